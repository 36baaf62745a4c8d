// Package usage provides token usage tracking for the cache console.
// It captures token accounting from generation responses and stores it for
// review, so operators can see how much of their traffic the caches absorb.
package usage

import (
	"context"
	"time"
)

// Generation modes recorded with each entry.
const (
	ModeExplicit = "explicit"
	ModeImplicit = "implicit"
)

// UsageStore defines the interface for usage storage backends.
// Implementations must be safe for concurrent use.
type UsageStore interface {
	// WriteBatch writes multiple usage entries to storage.
	// This is called by the Logger when flushing buffered entries.
	WriteBatch(ctx context.Context, entries []*UsageEntry) error

	// Recent returns the most recent entries, newest first.
	Recent(ctx context.Context, limit int) ([]*UsageEntry, error)

	// Flush forces any pending writes to complete.
	// Called during graceful shutdown.
	Flush(ctx context.Context) error

	// Close releases resources and flushes pending writes.
	Close() error
}

// UsageEntry represents a single generation's token accounting.
type UsageEntry struct {
	// ID is a unique identifier for this usage entry (UUID)
	ID string `json:"id"`

	// RequestID links the entry to the HTTP request that produced it
	RequestID string `json:"request_id"`

	// Timestamp is when the generation completed
	Timestamp time.Time `json:"timestamp"`

	// Model is the model that served the generation
	Model string `json:"model"`

	// Mode is "explicit" (bound to a cache) or "implicit"
	Mode string `json:"mode"`

	// CacheName is the cache the generation was bound to, empty for implicit
	CacheName string `json:"cache_name,omitempty"`

	// Token counts as reported by the provider
	PromptTokens    int32 `json:"prompt_tokens"`
	CachedTokens    int32 `json:"cached_tokens"`
	CandidateTokens int32 `json:"candidate_tokens"`
	TotalTokens     int32 `json:"total_tokens"`
}

// Config holds usage tracking configuration
type Config struct {
	// Enabled controls whether usage tracking is active
	Enabled bool

	// BufferSize is the number of usage entries to buffer before flushing
	BufferSize int

	// FlushInterval is how often to flush buffered entries
	FlushInterval time.Duration

	// RetentionDays is how long to keep usage data (0 = forever)
	RetentionDays int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		RetentionDays: 90,
	}
}
