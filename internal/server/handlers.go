// Package server provides HTTP handlers and server setup for the cache console.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"gemcache/internal/core"
	"gemcache/internal/gemini"
	"gemcache/internal/inventory"
	"gemcache/internal/usage"
)

// Console is the slice of the provider client the HTTP layer uses.
type Console interface {
	Upload(ctx context.Context, localPath string) (*core.RemoteFile, error)
	GetFile(ctx context.Context, name string) *core.RemoteFile
	ListFiles(ctx context.Context) []core.RemoteFile
	DeleteFile(ctx context.Context, name string) error
	DownloadToLocal(ctx context.Context, url, destPath string) (string, error)

	CreateCache(ctx context.Context, req gemini.CreateCacheRequest) (*core.CacheResource, error)
	GetCache(ctx context.Context, name string) (*core.CacheResource, error)
	ListCaches(ctx context.Context) []core.CacheResource
	UpdateCacheTTL(ctx context.Context, name string, ttlSeconds int64) (*core.CacheResource, error)
	UpdateCacheExpireTime(ctx context.Context, name, expireTime string) (*core.CacheResource, error)
	DeleteCache(ctx context.Context, name string) error

	GenerateFromCache(ctx context.Context, model, cacheName, prompt string) (*core.GenerationResult, error)
	GenerateImplicit(ctx context.Context, model, systemInstruction, prompt string) (*core.GenerationResult, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	console     Console
	inv         inventory.Store
	freshness   time.Duration
	usageLogger usage.LoggerInterface
	usageStore  usage.UsageStore
	stagingDir  string
}

// HandlerConfig carries the handler's dependencies.
type HandlerConfig struct {
	Console     Console
	Inventory   inventory.Store
	Freshness   time.Duration
	UsageLogger usage.LoggerInterface
	UsageStore  usage.UsageStore
	StagingDir  string
}

// NewHandler creates a new handler from its dependencies.
func NewHandler(cfg HandlerConfig) *Handler {
	freshness := cfg.Freshness
	if freshness <= 0 {
		freshness = inventory.DefaultFreshness
	}
	logger := cfg.UsageLogger
	if logger == nil {
		logger = &usage.NoopLogger{}
	}
	return &Handler{
		console:     cfg.Console,
		inv:         cfg.Inventory,
		freshness:   freshness,
		usageLogger: logger,
		usageStore:  cfg.UsageStore,
		stagingDir:  cfg.StagingDir,
	}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListModels handles GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"models": gemini.SupportedModels(),
	})
}

// EstimateTokens handles POST /v1/tokens/estimate. It is the pre-flight gate
// the UI consults before offering cache creation.
func (h *Handler) EstimateTokens(c echo.Context) error {
	var req struct {
		Text  string `json:"text"`
		Model string `json:"model"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}

	tokens := gemini.EstimateTokens(req.Text)
	minimum := gemini.MinCacheTokenRequirement(req.Model)

	return c.JSON(http.StatusOK, map[string]any{
		"tokens":           tokens,
		"min_cache_tokens": minimum,
		"meets_minimum":    tokens >= minimum,
	})
}

// RecentUsage handles GET /v1/usage
func (h *Handler) RecentUsage(c echo.Context) error {
	if h.usageStore == nil {
		return handleError(c, core.NewInvalidRequestError("usage tracking is disabled", nil))
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return handleError(c, core.NewInvalidRequestError("limit must be a positive integer", err))
		}
		limit = n
	}

	entries, err := h.usageStore.Recent(c.Request().Context(), limit)
	if err != nil {
		return handleError(c, err)
	}
	if entries == nil {
		entries = []*usage.UsageEntry{}
	}

	return c.JSON(http.StatusOK, map[string]any{"usage": entries})
}

// requestID returns the request identifier assigned by the RequestID middleware.
func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// resourceName decodes a path parameter into a full provider resource name.
// Identifiers contain a slash ("files/abc"), so clients URL-escape them; bare
// identifiers get the collection prefix added for convenience.
func resourceName(c echo.Context, collection string) (string, error) {
	raw := c.Param("id")
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", core.NewInvalidRequestError("invalid resource identifier", err)
	}
	if id == "" {
		return "", core.NewInvalidRequestError("resource identifier is required", nil)
	}
	if !strings.Contains(id, "/") {
		id = collection + "/" + id
	}
	return id, nil
}

// snapshotGet returns a fresh snapshot from the inventory store, if one
// exists. Store failures degrade to a miss.
func snapshotGet[T any](ctx context.Context, inv inventory.Store, key string, freshness time.Duration) (T, bool) {
	var zero T
	if inv == nil {
		return zero, false
	}
	entry, err := inv.Get(ctx, key)
	if err != nil {
		slog.Warn("inventory snapshot read failed", "key", key, "error", err)
		return zero, false
	}
	if !entry.Fresh(freshness) {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(entry.Data, &out); err != nil {
		slog.Warn("inventory snapshot corrupt, refreshing", "key", key, "error", err)
		return zero, false
	}
	return out, true
}

// snapshotSet stores a listing snapshot, logging rather than failing the
// request when the store is unavailable.
func snapshotSet(ctx context.Context, inv inventory.Store, key string, v any) {
	if inv == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("inventory snapshot marshal failed", "key", key, "error", err)
		return
	}
	entry := &inventory.Entry{UpdatedAt: time.Now(), Data: data}
	if err := inv.Set(ctx, key, entry); err != nil {
		slog.Warn("inventory snapshot write failed", "key", key, "error", err)
	}
}

// snapshotInvalidate discards a snapshot after a mutation.
func snapshotInvalidate(ctx context.Context, inv inventory.Store, key string) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx, key); err != nil {
		slog.Warn("inventory snapshot invalidation failed", "key", key, "error", err)
	}
}

// handleError converts console errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var consoleErr *core.ConsoleError
	if errors.As(err, &consoleErr) {
		return c.JSON(consoleErr.HTTPStatusCode(), consoleErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
