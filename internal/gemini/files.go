package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gemcache/internal/core"
	"gemcache/internal/observability"
)

// Upload sends a local file to the provider and blocks until provider-side
// processing finishes. While the file reports PROCESSING, the state is
// re-fetched every poll interval; any other state ends the wait. A failed
// status poll returns the last known object instead of an error: a transient
// status-check failure must not undo a successful upload.
func (c *Client) Upload(ctx context.Context, localPath string) (*core.RemoteFile, error) {
	if _, err := os.Stat(localPath); err != nil {
		return nil, core.NewNotFoundError(fmt.Sprintf("path does not exist: %s", localPath), err)
	}

	f, err := c.files.Upload(ctx, localPath)
	if err != nil {
		return nil, wrapRemoteErr("file upload", err)
	}
	rf := fileFromSDK(f)

	start := time.Now()
	for !rf.State.Terminal() {
		if !sleepCtx(ctx, c.pollInterval) {
			break
		}
		next, err := c.files.Get(ctx, rf.Name)
		if err != nil {
			slog.Warn("file status poll failed, keeping last known state",
				"file", rf.Name, "state", rf.State, "error", err)
			break
		}
		rf = fileFromSDK(next)
	}
	observability.UploadWaitSeconds.Observe(time.Since(start).Seconds())

	return rf, nil
}

// GetFile fetches a file by name with a small fixed retry budget. It returns
// nil once the budget is exhausted: callers treat absence as "could not
// resolve", never as a fatal condition.
func (c *Client) GetFile(ctx context.Context, name string) *core.RemoteFile {
	var lastErr error
	for attempt := 0; attempt < c.getRetries; attempt++ {
		f, err := c.files.Get(ctx, name)
		if err == nil {
			return fileFromSDK(f)
		}
		lastErr = err
		if attempt < c.getRetries-1 {
			observability.ProviderRetries.WithLabelValues("files.get").Inc()
			if !sleepCtx(ctx, c.getDelay) {
				return nil
			}
		}
	}
	slog.Warn("file fetch degraded to absent", "file", name, "attempts", c.getRetries, "error", lastErr)
	return nil
}

// ListFiles returns the provider's file inventory, degrading to empty on any
// failure.
func (c *Client) ListFiles(ctx context.Context) []core.RemoteFile {
	files := safeList(ctx, "files.list", c.listRetries, c.listBackoff, c.files.List)
	out := make([]core.RemoteFile, 0, len(files))
	for _, f := range files {
		out = append(out, *fileFromSDK(f))
	}
	return out
}

// DeleteFile removes a remote file. Deletion failures are meaningful to the
// operator and always propagate.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	if err := c.files.Delete(ctx, name); err != nil {
		return wrapRemoteErr("file delete", err)
	}
	return nil
}
