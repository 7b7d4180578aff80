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

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Append students from an Excel workbook",
	Long: `Read students from the first sheet of a workbook, skipping the header
row, and append them to the roster. Rows that fail validation are reported
and skipped. The valid rows are added together or not at all.

Example:
  rollcall import grades.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := sheet.Import(args[0], svc.Validator())
		if err != nil {
			return err
		}

		for _, rowErr := range result.Errors {
			logger.Warn("skipped invalid row",
				zap.String("path", args[0]),
				zap.String("sheet", result.Sheet),
				zap.Int("row", rowErr.Row),
				zap.Error(rowErr.Err))
			cmd.PrintErrf("Skipped %v\n", rowErr)
		}

		if err := svc.AddAll(result.Students); err != nil {
			return fmt.Errorf("failed to import students: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d student(s) from %s\n", len(result.Students), args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
