package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gemcache/internal/core"
)

func TestDownloadToLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("document body"))
	}))
	defer srv.Close()

	c := testClient(&fakeFiles{}, nil, nil)
	dest := filepath.Join(t.TempDir(), "nested", "doc.txt")

	got, err := c.DownloadToLocal(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dest {
		t.Errorf("expected %q, got %q", dest, got)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(data) != "document body" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestDownloadToLocalNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(&fakeFiles{}, nil, nil)
	dest := filepath.Join(t.TempDir(), "doc.txt")

	_, err := c.DownloadToLocal(context.Background(), srv.URL, dest)
	if core.TypeOf(err) != core.ErrorTypeTransport {
		t.Fatalf("expected transport_error, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("failed download must not leave a destination file")
	}
}

func TestDownloadToLocalSkipExisting(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(dest, []byte("already here"), 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	c := testClient(&fakeFiles{}, nil, nil)
	c.DownloadSkipExisting = true

	got, err := c.DownloadToLocal(context.Background(), srv.URL, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dest {
		t.Errorf("expected %q, got %q", dest, got)
	}
	if calls != 0 {
		t.Errorf("skip-if-present must not hit the network, got %d requests", calls)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "already here" {
		t.Errorf("existing file must be kept, got %q", data)
	}
}

func TestDownloadToLocalOverwritesByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	c := testClient(&fakeFiles{}, nil, nil)
	if _, err := c.DownloadToLocal(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "fresh" {
		t.Errorf("default policy must overwrite, got %q", data)
	}
}
