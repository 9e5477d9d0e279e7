package stubs

import (
	"context"
	"testing"
	"time"

	"infosite/internal/models"
)

func TestMockDB_RecordAndListLookups(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if err := db.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, query := range []string{"1", "2", "3"} {
		err := db.RecordLookup(ctx, models.Lookup{
			At:     base.Add(time.Duration(i) * time.Minute),
			ChatID: 456,
			Mode:   models.LookupByID,
			Query:  query,
		})
		if err != nil {
			t.Fatalf("Failed to record lookup: %v", err)
		}
	}

	// Another chat must not leak into the result
	if err := db.RecordLookup(ctx, models.Lookup{ChatID: 789, Query: "other"}); err != nil {
		t.Fatalf("Failed to record lookup: %v", err)
	}

	lookups, err := db.LastLookups(ctx, 456, 2)
	if err != nil {
		t.Fatalf("Failed to list lookups: %v", err)
	}

	if len(lookups) != 2 {
		t.Fatalf("Expected 2 lookups, got %d", len(lookups))
	}
	if lookups[0].Query != "3" || lookups[1].Query != "2" {
		t.Errorf("Expected newest first (3, 2), got (%s, %s)", lookups[0].Query, lookups[1].Query)
	}
}

func TestMockDB_LastLookupsEmpty(t *testing.T) {
	db := NewMockDB()

	lookups, err := db.LastLookups(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Failed to list lookups: %v", err)
	}
	if len(lookups) != 0 {
		t.Errorf("Expected no lookups, got %d", len(lookups))
	}
}
