package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies every pending up migration found at path (a file:// URL).
func Migrate(dsn, path string, logger *slog.Logger) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("platform/db: open migrations conn: %w", err)
	}
	defer conn.Close()

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("platform/db: migrations driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("platform/db: migrate instance: %w", err)
	}
	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("platform/db: migrate up: %w", upErr)
	}
	if sourceErr != nil {
		return fmt.Errorf("platform/db: migrate source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("platform/db: migrate database: %w", dbErr)
	}
	if logger != nil {
		if errors.Is(upErr, migrate.ErrNoChange) {
			logger.Info("no new migrations to apply")
		} else {
			logger.Info("database migrations applied", slog.String("path", path))
		}
	}
	return nil
}
