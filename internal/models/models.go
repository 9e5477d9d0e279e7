package models

import "time"

// Site represents one row of the sites sheet
type Site struct {
	ID               string
	Name             string
	Address          string
	AssetCode        string
	AccountReference string
	PortA            string
	PortB            string
	KeyLocation      string
	Notes            string

	// Coordinates are kept exactly as they appear in the sheet
	Latitude  string
	Longitude string
}

// Lookup modes recorded in the history
const (
	LookupByID   = "id"
	LookupByName = "name"
)

// Lookup represents a single search performed by a chat
type Lookup struct {
	At     time.Time
	ChatID int64
	UserID int64
	Mode   string
	Query  string
	SiteID string // empty when nothing matched
	Found  bool
}
