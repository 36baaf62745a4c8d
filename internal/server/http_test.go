package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, mock *mockConsole, cfg *Config) *Server {
	t.Helper()
	h, _ := newTestHandler(t, mock)
	return New(h, cfg)
}

func TestServerRouting(t *testing.T) {
	srv := newTestServer(t, &mockConsole{}, &Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /v1/models, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestServerAuth(t *testing.T) {
	srv := newTestServer(t, &mockConsole{}, &Config{MasterKey: "secret"})

	// Health stays public.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", rec.Code)
	}

	// API routes require the key.
	req = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", rec.Code)
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockConsole{}, &Config{MasterKey: "secret", MetricsEnabled: true})

	// Metrics skip authentication alongside health.
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestServerEscapedResourceID(t *testing.T) {
	mock := &mockConsole{}
	srv := newTestServer(t, mock, &Config{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/files/files%2Fabc", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(mock.deletedFiles) != 1 || mock.deletedFiles[0] != "files/abc" {
		t.Errorf("expected escaped identifier to decode to files/abc, got %v", mock.deletedFiles)
	}
}
