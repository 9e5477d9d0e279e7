package ch

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"infosite/migrations"
)

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// MigrateUp applies every pending embedded migration
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the latest migration
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// MigrationStatus prints the state of every migration through goose's logger
func MigrationStatus(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version
func MigrationVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}
