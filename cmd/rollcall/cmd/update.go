/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/ssargent/rollcall/pkg/service"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <field> <value> <field>=<value>...",
	Short: "Change fields of the first student matching a name, email or UID",
	Long: `Find the first student whose field exactly matches value, then apply
each field=value assignment in order. Every assignment is validated before
any is applied, and the roster is saved once.

Example:
  rollcall update uid 1234567890 essay=A project=B
  rollcall update name "Ann Lee" "name=Ann Leigh"`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := roster.ParseField(args[0])
		if err != nil {
			return err
		}
		changes, err := parseAssignments(args[2:], svc.Validator())
		if err != nil {
			return err
		}

		i, _, err := svc.Find(f, roster.Normalize(args[1]))
		if err != nil {
			return fmt.Errorf("failed to find %s %q: %w", f, args[1], err)
		}
		if err := svc.UpdateAll(i, changes); err != nil {
			return fmt.Errorf("failed to update student: %w", err)
		}

		student, err := svc.Get(i)
		if err != nil {
			return err
		}
		return printStudent(cmd.OutOrStdout(), student)
	},
}

// parseAssignments parses field=value pairs and validates every value
func parseAssignments(args []string, validator *roster.Validator) ([]service.FieldValue, error) {
	changes := make([]service.FieldValue, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		f, err := roster.ParseField(name)
		if err != nil {
			return nil, err
		}
		value = roster.Normalize(value)
		if err := validator.ValidateField(f, value); err != nil {
			return nil, err
		}
		changes = append(changes, service.FieldValue{Field: f, Value: value})
	}
	return changes, nil
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
