package inventory

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestLocalStore(t *testing.T) {
	t.Run("GetSetRoundTrip", func(t *testing.T) {
		store := NewLocalStore(t.TempDir())
		ctx := context.Background()

		// Initially empty
		entry, err := store.Get(ctx, KeyFiles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Fatalf("expected nil entry for empty store, got %v", entry)
		}

		data, _ := json.Marshal([]string{"files/a", "files/b"})
		err = store.Set(ctx, KeyFiles, &Entry{UpdatedAt: time.Now().UTC(), Data: data})
		if err != nil {
			t.Fatalf("unexpected error on set: %v", err)
		}

		entry, err = store.Get(ctx, KeyFiles)
		if err != nil {
			t.Fatalf("unexpected error on get: %v", err)
		}
		if entry == nil {
			t.Fatal("expected entry, got nil")
		}

		var names []string
		if err := json.Unmarshal(entry.Data, &names); err != nil {
			t.Fatalf("failed to unmarshal data: %v", err)
		}
		if len(names) != 2 {
			t.Errorf("expected 2 names, got %d", len(names))
		}
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		store := NewLocalStore(t.TempDir())
		ctx := context.Background()

		if err := store.Set(ctx, KeyFiles, &Entry{UpdatedAt: time.Now(), Data: json.RawMessage(`["f"]`)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entry, err := store.Get(ctx, KeyCaches)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Error("caches key must be unaffected by files key")
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		store := NewLocalStore(t.TempDir())
		ctx := context.Background()

		if err := store.Set(ctx, KeyCaches, &Entry{UpdatedAt: time.Now(), Data: json.RawMessage(`[]`)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.Invalidate(ctx, KeyCaches); err != nil {
			t.Fatalf("unexpected error on invalidate: %v", err)
		}

		entry, err := store.Get(ctx, KeyCaches)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Error("expected nil entry after invalidation")
		}

		// Invalidating a missing key is fine.
		if err := store.Invalidate(ctx, KeyCaches); err != nil {
			t.Errorf("invalidating a missing key must not error: %v", err)
		}
	})

	t.Run("EmptyDirIsNoop", func(t *testing.T) {
		store := NewLocalStore("")
		ctx := context.Background()

		if err := store.Set(ctx, KeyFiles, &Entry{UpdatedAt: time.Now(), Data: json.RawMessage(`[]`)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entry, err := store.Get(ctx, KeyFiles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Error("expected nil entry from disabled store")
		}
	})
}

func TestEntryFresh(t *testing.T) {
	var nilEntry *Entry
	if nilEntry.Fresh(time.Minute) {
		t.Error("nil entry must not be fresh")
	}

	fresh := &Entry{UpdatedAt: time.Now()}
	if !fresh.Fresh(time.Minute) {
		t.Error("just-written entry must be fresh")
	}

	stale := &Entry{UpdatedAt: time.Now().Add(-2 * time.Minute)}
	if stale.Fresh(time.Minute) {
		t.Error("old entry must not be fresh")
	}
}
