/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/roster"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:   "remove <field> <value>",
	Short: "Remove the first student matching a name, email or UID",
	Long: `Remove the first student whose field exactly matches value and save
the roster.

Example:
  rollcall remove uid 1234567890`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := roster.ParseField(args[0])
		if err != nil {
			return err
		}

		student, err := svc.RemoveBy(f, roster.Normalize(args[1]))
		if err != nil {
			return fmt.Errorf("failed to remove %s %q: %w", f, args[1], err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", student.Name, student.ID)
		return err
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
