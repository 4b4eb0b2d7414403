package cli

import (
	"github.com/spf13/cobra"

	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/postgres"
)

func newMigrateCmd(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			if dir == "" {
				dir = cfg.Database.MigrationsDir
			}

			conn, err := postgres.NewConnection(cfg.Database, logger.Named("postgres"))
			if err != nil {
				return err
			}
			defer conn.Close()

			return conn.RunMigrations(dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default: database.migrations_dir from config)")
	return cmd
}
