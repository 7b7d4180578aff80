/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/rollcall/pkg/config"
	"github.com/ssargent/rollcall/pkg/di"
	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/ssargent/rollcall/pkg/service"
	"github.com/ssargent/rollcall/pkg/store"
	"go.uber.org/zap"
)

// skipStore marks commands that run without opening the roster
const skipStore = "rollcall/skip-store"

var (
	container *di.Container

	cfg    *config.Config
	logger *zap.Logger
	svc    *service.RosterService
)

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "rollcall - console student roster",
	Long: `rollcall keeps a roster of students, each with a name, an email, a
10 character UID and three letter grades, in a plain text file.

Run without a subcommand to start the interactive console.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsStore(cmd) {
			return nil
		}
		if container == nil {
			return errors.New("dependency container not initialized")
		}

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		logger, err = container.GetLoggerFactory()(cfg.Logging)
		if err != nil {
			return err
		}

		charset, err := roster.ParseIDCharset(cfg.IDCharset)
		if err != nil {
			return err
		}
		recoverStore, _ := cmd.Flags().GetBool("recover")

		svc, err = container.GetServiceFactory().CreateRosterService(service.Options{
			Backend:   cfg.Backend,
			DataFile:  cfg.DataFile,
			PebbleDir: cfg.PebbleDir,
			IDCharset: charset,
			Recover:   recoverStore,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create roster service: %w", err)
		}

		recovery, err := svc.Open()
		if err != nil {
			return err
		}
		if recovery != nil {
			cmd.PrintErrln(recoveryMessage(recovery))
			if recovery.BackupPath != "" {
				cmd.PrintErrf("Damaged data saved to %s\n", recovery.BackupPath)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown()
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and releases the store even when a command fails.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := shutdown(); err == nil {
		err = closeErr
	}
	return err
}

func shutdown() error {
	var err error
	if svc != nil {
		err = svc.Close()
		svc = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	return err
}

// recoveryMessage summarizes a repair. Per-record backends report dropped
// records, the text backend reports dropped lines.
func recoveryMessage(r *store.RecoveryResult) string {
	if r.RecordsDropped > 0 {
		return fmt.Sprintf("Recovered from corruption: kept %d records, dropped %d records",
			r.RecordsKept, r.RecordsDropped)
	}
	return fmt.Sprintf("Recovered from corruption: kept %d records, dropped %d lines",
		r.RecordsKept, r.LinesDropped)
}

// skipsStore reports whether cmd runs without a roster: init and cobra's
// built-in help and completion commands.
func skipsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipStore] == "true" || c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

// loadConfig reads --config when given. Otherwise the default path is used
// if it exists, falling back to built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadConfig(path)
	}

	path = config.GetDefaultConfigPath()
	if config.ConfigExists(path) {
		return config.LoadConfig(path)
	}
	return config.DefaultConfig(), nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, c *config.Config) {
	overrides := map[string]*string{
		"data-file":  &c.DataFile,
		"backend":    &c.Backend,
		"pebble-dir": &c.PebbleDir,
		"id-charset": &c.IDCharset,
		"log-level":  &c.Logging.Level,
		"log-file":   &c.Logging.File,
		"format":     &c.Output.Format,
	}
	for name, field := range overrides {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			*field = flag.Value.String()
		}
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ~/.config/rollcall/config.yaml)")
	flags.StringP("data-file", "d", "students.txt", "Roster file for the text backend")
	flags.String("backend", "text", "Storage backend: text or pebble")
	flags.String("pebble-dir", "students.pebble", "Database directory for the pebble backend")
	flags.String("id-charset", "decimal", "Characters allowed in a UID: decimal or hex")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-file", "rollcall.log", "Log destination: a path, stderr or stdout")
	flags.Bool("recover", false, "Back up a damaged roster and keep its readable records")
	flags.StringP("format", "o", "table", "Output format for list and find: table or json")
}
