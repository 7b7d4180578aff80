/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/roster"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <field> <value>",
	Short: "Show the first student matching a name, email or UID",
	Long: `Show the first student whose field exactly matches value.
Searchable fields are name, email and uid.

Example:
  rollcall find uid 1234567890
  rollcall find name "Ann Lee" -o json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := roster.ParseField(args[0])
		if err != nil {
			return err
		}

		_, student, err := svc.Find(f, roster.Normalize(args[1]))
		if err != nil {
			return fmt.Errorf("failed to find %s %q: %w", f, args[1], err)
		}
		return printStudent(cmd.OutOrStdout(), student)
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
