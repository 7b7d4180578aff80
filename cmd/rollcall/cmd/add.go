/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/roster"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student to the roster",
	Long: `Add a student to the end of the roster and save it.

Example:
  rollcall add --name "Ann Lee" --email a@x.com --id 1234567890 \
    --presentation A --essay B --project C`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := studentFromFlags(cmd, svc.Validator())
		if err != nil {
			return err
		}
		if err := svc.Add(student); err != nil {
			return fmt.Errorf("failed to add student: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", student.Name, student.ID)
		return err
	},
}

func studentFromFlags(cmd *cobra.Command, validator *roster.Validator) (roster.Student, error) {
	flag := func(name string) string {
		value, _ := cmd.Flags().GetString(name)
		return roster.Normalize(value)
	}

	student := roster.Student{
		Name:  flag("name"),
		Email: flag("email"),
		ID:    flag("id"),
	}

	grades := []struct {
		field roster.Field
		dest  *roster.Grade
	}{
		{roster.FieldPresentation, &student.Presentation},
		{roster.FieldEssay, &student.Essay},
		{roster.FieldProject, &student.Project},
	}
	for _, g := range grades {
		grade, err := validator.ValidateGrade(g.field, flag(g.field.String()))
		if err != nil {
			return roster.Student{}, err
		}
		*g.dest = grade
	}
	return student, nil
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("name", "", "Student name (required)")
	addCmd.Flags().String("email", "", "Student email (required)")
	addCmd.Flags().String("id", "", "Student UID (required)")
	addCmd.Flags().String("presentation", "", "Presentation grade: A, B, C, D or F (required)")
	addCmd.Flags().String("essay", "", "Essay grade: A, B, C, D or F (required)")
	addCmd.Flags().String("project", "", "Project grade: A, B, C, D or F (required)")
	for _, name := range []string{"name", "email", "id", "presentation", "essay", "project"} {
		if err := addCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
