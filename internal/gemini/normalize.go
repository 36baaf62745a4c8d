package gemini

import (
	"context"
	"log/slog"

	"gemcache/internal/core"
)

// Normalize resolves a heterogeneous content list into items ready for cache
// creation. Literal text and already-resolved file handles pass through
// untouched; name-only placeholders are resolved via GetFile, and the ones
// that cannot be resolved are dropped. Order of survivors matches the input.
// After Normalize no placeholder remains; callers decide what an empty result
// means.
func (c *Client) Normalize(ctx context.Context, items []core.ContentItem) []core.ContentItem {
	out := make([]core.ContentItem, 0, len(items))
	for _, it := range items {
		switch {
		case it.File != nil:
			out = append(out, core.ContentItem{File: it.File})
		case it.Text != "":
			out = append(out, core.ContentItem{Text: it.Text})
		case it.FileRef != "":
			if f := c.GetFile(ctx, it.FileRef); f != nil {
				out = append(out, core.ContentItem{File: f})
			} else {
				slog.Warn("dropping unresolvable file reference", "name", it.FileRef)
			}
		}
	}
	return out
}
