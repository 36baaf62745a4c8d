package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gemcache/internal/core"
	"gemcache/internal/gemini"
	"gemcache/internal/inventory"
)

// CreateCache handles POST /v1/caches. Eligibility of the model is advisory;
// a create against an unpinned model is attempted and the warning travels in
// the response for the UI to render.
func (h *Handler) CreateCache(c echo.Context) error {
	var req struct {
		Model             string             `json:"model"`
		DisplayName       string             `json:"display_name"`
		SystemInstruction string             `json:"system_instruction"`
		TTLSeconds        int64              `json:"ttl_seconds"`
		Contents          []core.ContentItem `json:"contents"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	if req.Model == "" {
		return handleError(c, core.NewInvalidRequestError("model is required", nil))
	}
	if req.TTLSeconds <= 0 {
		return handleError(c, core.NewInvalidRequestError("ttl_seconds must be positive", nil))
	}

	ctx := c.Request().Context()
	cache, err := h.console.CreateCache(ctx, gemini.CreateCacheRequest{
		Model:             req.Model,
		Contents:          req.Contents,
		SystemInstruction: req.SystemInstruction,
		TTLSeconds:        req.TTLSeconds,
		DisplayName:       req.DisplayName,
	})
	if err != nil {
		return handleError(c, err)
	}
	snapshotInvalidate(ctx, h.inv, inventory.KeyCaches)

	resp := map[string]any{"cache": cache}
	if info := core.DescribeModel(req.Model); !info.ExplicitCacheOK {
		resp["warning"] = "model is not a pinned version; explicit caching may be rejected by the provider"
	}

	return c.JSON(http.StatusCreated, resp)
}

// ListCaches handles GET /v1/caches, serving a recent snapshot when one exists.
func (h *Handler) ListCaches(c echo.Context) error {
	ctx := c.Request().Context()

	if caches, ok := snapshotGet[[]core.CacheResource](ctx, h.inv, inventory.KeyCaches, h.freshness); ok {
		return c.JSON(http.StatusOK, map[string]any{"caches": caches, "cached": true})
	}

	caches := h.console.ListCaches(ctx)
	snapshotSet(ctx, h.inv, inventory.KeyCaches, caches)

	return c.JSON(http.StatusOK, map[string]any{"caches": caches, "cached": false})
}

// GetCache handles GET /v1/caches/:id
func (h *Handler) GetCache(c echo.Context) error {
	name, err := resourceName(c, "cachedContents")
	if err != nil {
		return handleError(c, err)
	}

	cache, err := h.console.GetCache(c.Request().Context(), name)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, cache)
}

// UpdateCache handles PATCH /v1/caches/:id. Exactly one of ttl_seconds and
// expire_time must be set: a relative TTL restarts the expiry clock from now,
// an absolute RFC 3339 expire_time pins it.
func (h *Handler) UpdateCache(c echo.Context) error {
	name, err := resourceName(c, "cachedContents")
	if err != nil {
		return handleError(c, err)
	}

	var req struct {
		TTLSeconds int64  `json:"ttl_seconds"`
		ExpireTime string `json:"expire_time"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}

	if (req.TTLSeconds > 0) == (req.ExpireTime != "") {
		return handleError(c, core.NewInvalidRequestError("set exactly one of ttl_seconds and expire_time", nil))
	}

	ctx := c.Request().Context()
	var cache *core.CacheResource
	if req.TTLSeconds > 0 {
		cache, err = h.console.UpdateCacheTTL(ctx, name, req.TTLSeconds)
	} else {
		cache, err = h.console.UpdateCacheExpireTime(ctx, name, req.ExpireTime)
	}
	if err != nil {
		return handleError(c, err)
	}
	snapshotInvalidate(ctx, h.inv, inventory.KeyCaches)

	return c.JSON(http.StatusOK, cache)
}

// DeleteCache handles DELETE /v1/caches/:id
func (h *Handler) DeleteCache(c echo.Context) error {
	name, err := resourceName(c, "cachedContents")
	if err != nil {
		return handleError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.console.DeleteCache(ctx, name); err != nil {
		return handleError(c, err)
	}
	snapshotInvalidate(ctx, h.inv, inventory.KeyCaches)

	return c.JSON(http.StatusOK, map[string]any{"deleted": name})
}
