package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"gemcache/internal/core"
)

// CreateCacheRequest carries everything needed to create an explicit cache.
type CreateCacheRequest struct {
	Model             string
	Contents          []core.ContentItem
	SystemInstruction string
	TTLSeconds        int64
	DisplayName       string
}

// CreateCache normalizes the request contents and creates an explicit cache.
// If nothing usable survives normalization the call fails before any remote
// request is made. TTL seconds are converted to the provider's duration form
// (300 becomes "300s" on the wire).
func (c *Client) CreateCache(ctx context.Context, req CreateCacheRequest) (*core.CacheResource, error) {
	resolved := c.Normalize(ctx, req.Contents)
	if len(resolved) == 0 {
		return nil, core.NewEmptyCacheContentError()
	}

	cfg := &genai.CreateCachedContentConfig{
		DisplayName: req.DisplayName,
		Contents:    contentsToSDK(resolved),
		TTL:         time.Duration(req.TTLSeconds) * time.Second,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, "")
	}

	cc, err := c.caches.Create(ctx, req.Model, cfg)
	if err != nil {
		return nil, wrapRemoteErr("cache create", err)
	}
	return cacheFromSDK(cc), nil
}

// GetCache fetches a cache by name. Errors propagate.
func (c *Client) GetCache(ctx context.Context, name string) (*core.CacheResource, error) {
	cc, err := c.caches.Get(ctx, name)
	if err != nil {
		return nil, wrapRemoteErr("cache get", err)
	}
	return cacheFromSDK(cc), nil
}

// ListCaches returns the cache inventory, degrading to empty on any failure.
func (c *Client) ListCaches(ctx context.Context) []core.CacheResource {
	caches := safeList(ctx, "caches.list", c.listRetries, c.listBackoff, c.caches.List)
	out := make([]core.CacheResource, 0, len(caches))
	for _, cc := range caches {
		out = append(out, *cacheFromSDK(cc))
	}
	return out
}

// UpdateCacheTTL replaces a cache's time-to-live, restarting the expiry clock
// from now.
func (c *Client) UpdateCacheTTL(ctx context.Context, name string, ttlSeconds int64) (*core.CacheResource, error) {
	cc, err := c.caches.Update(ctx, name, &genai.UpdateCachedContentConfig{
		TTL: time.Duration(ttlSeconds) * time.Second,
	})
	if err != nil {
		return nil, wrapRemoteErr("cache update", err)
	}
	return cacheFromSDK(cc), nil
}

// UpdateCacheExpireTime sets an absolute expiry. The timestamp must be
// timezone-aware RFC 3339.
func (c *Client) UpdateCacheExpireTime(ctx context.Context, name, expireTime string) (*core.CacheResource, error) {
	t, err := time.Parse(time.RFC3339, expireTime)
	if err != nil {
		return nil, core.NewInvalidRequestError("expire_time must be a timezone-aware RFC 3339 timestamp", err)
	}
	cc, err := c.caches.Update(ctx, name, &genai.UpdateCachedContentConfig{ExpireTime: t})
	if err != nil {
		return nil, wrapRemoteErr("cache update", err)
	}
	return cacheFromSDK(cc), nil
}

// DeleteCache removes an explicit cache. Errors propagate.
func (c *Client) DeleteCache(ctx context.Context, name string) error {
	if err := c.caches.Delete(ctx, name); err != nil {
		return wrapRemoteErr("cache delete", err)
	}
	return nil
}
