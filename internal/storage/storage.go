package storage

import (
	"context"

	"infosite/internal/models"
)

// Storage defines the interface for the lookup history
type Storage interface {
	// RecordLookup appends one lookup to the history
	RecordLookup(ctx context.Context, lookup models.Lookup) error

	// LastLookups returns up to limit lookups of a chat, newest first
	LastLookups(ctx context.Context, chatID int64, limit int) ([]models.Lookup, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
