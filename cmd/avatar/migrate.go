package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memohai/avatar/internal/db"
	"github.com/memohai/avatar/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	var down int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !usePostgres(cfg) {
				return fmt.Errorf("migrate requires store.driver = \"postgres\"")
			}
			if down > 0 {
				return db.MigrateDown(logger.L, cfg.Postgres, down)
			}
			return db.Migrate(logger.L, cfg.Postgres)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of migrating up")
	return cmd
}
