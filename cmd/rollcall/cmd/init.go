/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default rollcall configuration file",
	Long: `Write a configuration file holding the default settings.

The file goes to --config when given, otherwise to
~/.config/rollcall/config.yaml. --data-file sets the roster path it names.

Examples:
	  rollcall init
	  rollcall init --config ./rollcall.yaml --data-file ./class.txt`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataFile, _ := cmd.Flags().GetString("data-file")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		written, err := config.BootstrapConfig(configPath, dataFile)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		cmd.Printf("Wrote config to %s\n", configPath)
		cmd.Printf("Roster file: %s\n", written.DataFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
