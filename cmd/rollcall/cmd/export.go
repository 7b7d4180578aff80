/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/sheet"
	"go.uber.org/zap"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write the roster to an Excel workbook",
	Long: `Write every student to the "Roster" sheet of a new workbook, one row
per student, with a Points column totalling the three grades.

Example:
  rollcall export grades.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		students := svc.List()
		if err := sheet.Export(args[0], students); err != nil {
			return err
		}
		logger.Info("roster exported", zap.String("path", args[0]), zap.Int("records", len(students)))
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Exported %d student(s) to %s\n", len(students), args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
