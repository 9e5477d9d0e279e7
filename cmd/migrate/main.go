package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"infosite/internal/config"
	"infosite/internal/storage/ch"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using existing environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the ClickHouse lookup history schema",
		Long:         "Applies the embedded goose migrations to the ClickHouse database configured through CLICKHOUSE_* variables.",
		SilenceUsage: true,
	}

	cmd.AddCommand(newUpCmd())
	cmd.AddCommand(newDownCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCreateCmd())
	return cmd
}

// withDB opens the configured database for the duration of fn
func withDB(fn func(db *sql.DB) error) error {
	cfg, err := config.LoadClickHouseFromEnv()
	if err != nil {
		return err
	}

	db := ch.OpenSQL(cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.UseTLS)
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("Connected to ClickHouse successfully")

	return fn(db)
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				if err := ch.MigrateUp(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
				return nil
			})
		},
	}
}

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				if err := ch.MigrateDown(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rollback completed successfully")
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				return ch.MigrationStatus(cmd.Context(), db)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				version, err := ch.MigrationVersion(cmd.Context(), db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				return nil
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "create <migration_name>",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created migration: %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory the migration file is written to")
	return cmd
}
