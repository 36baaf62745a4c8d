package usage

import (
	"context"
	"sync"
	"testing"
	"time"
)

// captureStore records batches written by the logger.
type captureStore struct {
	mu      sync.Mutex
	entries []*UsageEntry
	flushed bool
	closed  bool
}

func (s *captureStore) WriteBatch(ctx context.Context, entries []*UsageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *captureStore) Recent(ctx context.Context, limit int) ([]*UsageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*UsageEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *captureStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = true
	return nil
}

func (s *captureStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func entry(id string) *UsageEntry {
	return &UsageEntry{
		ID:        id,
		RequestID: "req-" + id,
		Timestamp: time.Now(),
		Model:     "models/gemini-2.0-flash-001",
		Mode:      ModeExplicit,
	}
}

func TestLoggerFlushOnClose(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger(store, Config{Enabled: true, BufferSize: 10, FlushInterval: time.Hour})

	logger.Write(entry("a"))
	logger.Write(entry("b"))

	// Close drains the buffer even though the periodic timer never fired.
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if got := store.count(); got != 2 {
		t.Errorf("expected 2 entries after close, got %d", got)
	}
	if !store.flushed {
		t.Error("expected store flush during shutdown")
	}
	if !store.closed {
		t.Error("expected store to be closed")
	}
}

func TestLoggerPeriodicFlush(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger(store, Config{Enabled: true, BufferSize: 10, FlushInterval: 10 * time.Millisecond})
	defer logger.Close()

	logger.Write(entry("a"))

	deadline := time.Now().Add(2 * time.Second)
	for store.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for periodic flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoggerThresholdFlush(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger(store, Config{Enabled: true, BufferSize: BatchFlushThreshold * 2, FlushInterval: time.Hour})
	defer logger.Close()

	for i := 0; i < BatchFlushThreshold; i++ {
		logger.Write(entry("x"))
	}

	// Reaching the threshold flushes without waiting for the ticker.
	deadline := time.Now().Add(2 * time.Second)
	for store.count() < BatchFlushThreshold {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for threshold flush, got %d entries", store.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoggerWriteAfterClose(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger(store, Config{Enabled: true, BufferSize: 10, FlushInterval: time.Hour})

	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Must not panic or block.
	logger.Write(entry("late"))

	if got := store.count(); got != 0 {
		t.Errorf("entry written after close must be dropped, got %d", got)
	}
}

func TestLoggerCloseIdempotent(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger(store, Config{Enabled: true})

	if err := logger.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestLoggerNilEntry(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger(store, Config{Enabled: true})
	defer logger.Close()

	logger.Write(nil)
}

func TestNoopLogger(t *testing.T) {
	logger := &NoopLogger{}
	logger.Write(entry("a"))
	if logger.Config().Enabled {
		t.Error("noop logger must report disabled")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
