package dataset

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/vaxchart/internal/source"
)

// ChangeBufferSize is the capacity of each subscriber channel.
const ChangeBufferSize = 16

// Fetcher downloads and parses the dataset.
type Fetcher interface {
	Fetch(ctx context.Context) (*source.ParseResult, error)
}

// Registry holds the current dataset snapshot and keeps it fresh.
type Registry interface {
	// Start performs the initial load (blocking) and begins periodic refresh.
	Start(ctx context.Context) error

	// Stop gracefully shuts down and closes subscriber channels.
	Stop(ctx context.Context) error

	// Snapshot returns the current snapshot, nil before the first load.
	Snapshot() *Snapshot

	// Refresh fetches the dataset now and swaps it in on success.
	Refresh(ctx context.Context) error

	// Subscribe returns a channel receiving one Change per successful load.
	Subscribe() <-chan Change

	// Status reports load health.
	Status() Status
}

// Change describes a newly loaded snapshot.
type Change struct {
	LoadID    uuid.UUID `json:"load_id"`
	LoadedAt  time.Time `json:"loaded_at"`
	Rows      int       `json:"rows"`
	Skipped   int       `json:"skipped"`
	Locations int       `json:"locations"`
}

// Status summarizes registry health.
type Status struct {
	Ready      bool      `json:"ready"`
	LoadID     string    `json:"load_id,omitempty"`
	Rows       int       `json:"rows"`
	Locations  int       `json:"locations"`
	Vaccines   int       `json:"vaccines"`
	LastSyncAt time.Time `json:"last_sync_at,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}
