package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"gemcache/internal/core"
)

// DownloadToLocal streams the body of url into destPath, creating parent
// directories as needed, and returns destPath. Non-2xx responses and network
// failures surface as transport errors. The default policy overwrites an
// existing destination; DownloadSkipExisting switches to skip-if-present.
func (c *Client) DownloadToLocal(ctx context.Context, url, destPath string) (string, error) {
	if c.DownloadSkipExisting {
		if _, err := os.Stat(destPath); err == nil {
			return destPath, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", core.NewTransportError("invalid download URL", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", core.NewTransportError("download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", core.NewTransportError(fmt.Sprintf("download failed with status %d", resp.StatusCode), nil)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return "", core.NewTransportError("download interrupted", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to finish writing %s: %w", destPath, err)
	}

	return destPath, nil
}
