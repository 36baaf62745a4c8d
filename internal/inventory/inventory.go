// Package inventory provides a short-lived snapshot store for provider
// listings. List calls against the Files and Caches APIs are slow and rate
// limited, so the console serves a recent snapshot and refreshes it when the
// snapshot is older than the freshness window or a mutation invalidates it.
// Supports both local (file) and Redis backends for multi-instance deployments.
package inventory

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known snapshot keys.
const (
	KeyFiles  = "files"
	KeyCaches = "caches"
)

// DefaultFreshness is how long a snapshot is served before the next read
// refreshes it from the provider.
const DefaultFreshness = 60 * time.Second

// Entry is one stored snapshot. Data holds the listing as produced by the
// provider client, opaque to the store.
type Entry struct {
	UpdatedAt time.Time       `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// Fresh reports whether the entry is younger than the freshness window.
func (e *Entry) Fresh(window time.Duration) bool {
	return e != nil && time.Since(e.UpdatedAt) < window
}

// Store defines the interface for snapshot storage.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the snapshot under key.
	// Returns nil, nil if no snapshot exists yet.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores the snapshot under key.
	Set(ctx context.Context, key string, entry *Entry) error

	// Invalidate discards the snapshot under key. Called after any mutation
	// of the underlying resource so the next read refreshes.
	Invalidate(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
