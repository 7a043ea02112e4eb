package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/memohai/avatar/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every pending up migration.
func Migrate(log *slog.Logger, cfg config.PostgresConfig) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Info("schema migrated", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

// MigrateDown rolls back the given number of steps.
func MigrateDown(log *slog.Logger, cfg config.PostgresConfig, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	log.Info("schema rolled back", slog.Int("steps", steps))
	return nil
}

func newMigrator(cfg config.PostgresConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// migrateURL swaps the scheme so golang-migrate picks the pgx/v5 driver.
func migrateURL(cfg config.PostgresConfig) string {
	return "pgx5://" + strings.TrimPrefix(cfg.DSN(), "postgres://")
}
