/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/console"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive roster console",
	Long: `Start the interactive console. Commands are single letters:

  a  add a student        r  remove a student
  p  print all students   u  update a student
  f  find a student       q  save and quit
  h  show the command menu

End of input and Ctrl-C save the roster the same way q does.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	shell := console.NewShell(svc, console.Config{
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		Logger: logger.Named("console"),
	})
	return shell.Run(cmd.Context())
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
