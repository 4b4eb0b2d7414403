// Package cli defines the wealthdesk command tree: the root command with
// global flags, the serve command that runs the API server, and the migrate
// command for schema management.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wealthdesk/wealthdesk/internal/config"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root cobra command with global flags and all
// subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "wealthdesk",
		Short:   "wealthdesk — portfolio analytics backend for relationship managers",
		Long:    "wealthdesk is the backend service behind the relationship-manager\ndashboard: client book management, transaction ledger, task and\nappointment scheduling, and portfolio aggregation.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}

// Execute runs the root command. It is the single entry point used by main.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig loads configuration per the global flags and applies the
// log-level override.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger from the log config section.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
}
