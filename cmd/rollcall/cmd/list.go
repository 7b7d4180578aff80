/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every student in the roster",
	Long: `Print every student in roster order, as a table or as JSON.

Example:
  rollcall list
  rollcall list -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStudents(cmd.OutOrStdout(), svc.List())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
