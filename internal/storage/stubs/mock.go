package stubs

import (
	"context"
	"sync"

	"infosite/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface.
// It backs the history when ClickHouse is disabled and in tests.
type MockDB struct {
	mu      sync.RWMutex
	lookups []models.Lookup
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		lookups: make([]models.Lookup, 0),
	}
}

// Initialize is a no-op for the in-memory store
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// RecordLookup appends a lookup
func (m *MockDB) RecordLookup(ctx context.Context, lookup models.Lookup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups = append(m.lookups, lookup)
	return nil
}

// LastLookups returns the newest lookups of a chat first
func (m *MockDB) LastLookups(ctx context.Context, chatID int64, limit int) ([]models.Lookup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var lookups []models.Lookup
	// lookups are appended in order, walk backwards for newest first
	for i := len(m.lookups) - 1; i >= 0 && len(lookups) < limit; i-- {
		if m.lookups[i].ChatID == chatID {
			lookups = append(lookups, m.lookups[i])
		}
	}
	return lookups, nil
}

// Close is a no-op
func (m *MockDB) Close() error {
	return nil
}
