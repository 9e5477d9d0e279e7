package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"

	"infosite/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

func newOptions(host string, port int, database, user, password string, useTLS bool) *clickhouse.Options {
	options := &clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", host, port)},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}
	return options
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(newOptions(host, port, database, user, password, useTLS))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// OpenSQL opens a database/sql handle, used by the goose migrations
func OpenSQL(host string, port int, database, user, password string, useTLS bool) *sql.DB {
	return clickhouse.OpenDB(newOptions(host, port, database, user, password, useTLS))
}

// Initialize checks that the lookups table exists; it is created via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	var exists uint8
	if err := db.conn.QueryRow(ctx, `EXISTS TABLE lookups`).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check lookups table: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("table lookups does not exist, run the migrations first")
	}
	return nil
}

// RecordLookup inserts a lookup into the history
func (db *ClickHouseDB) RecordLookup(ctx context.Context, lookup models.Lookup) error {
	err := db.conn.Exec(ctx, `INSERT INTO lookups (at, chat_id, user_id, mode, query, site_id, found) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lookup.At, lookup.ChatID, lookup.UserID, lookup.Mode, lookup.Query, lookup.SiteID, lookup.Found)
	if err != nil {
		return fmt.Errorf("failed to record lookup: %w", err)
	}
	return nil
}

// LastLookups returns the last N lookups of a chat
func (db *ClickHouseDB) LastLookups(ctx context.Context, chatID int64, limit int) ([]models.Lookup, error) {
	rows, err := db.conn.Query(ctx, `SELECT at, chat_id, user_id, mode, query, site_id, found FROM lookups WHERE chat_id = ? ORDER BY at DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get last lookups: %w", err)
	}
	defer rows.Close()

	var lookups []models.Lookup
	for rows.Next() {
		var lookup models.Lookup
		if err := rows.Scan(&lookup.At, &lookup.ChatID, &lookup.UserID, &lookup.Mode, &lookup.Query, &lookup.SiteID, &lookup.Found); err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		lookups = append(lookups, lookup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lookups: %w", err)
	}
	return lookups, nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
