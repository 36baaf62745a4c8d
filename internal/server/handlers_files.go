package server

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"gemcache/internal/core"
	"gemcache/internal/inventory"
)

// UploadFile handles POST /v1/files. The console runs next to the documents
// it manages, so the body names a local path. The call blocks until
// provider-side processing settles.
func (h *Handler) UploadFile(c echo.Context) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	if req.Path == "" {
		return handleError(c, core.NewInvalidRequestError("path is required", nil))
	}

	ctx := c.Request().Context()
	file, err := h.console.Upload(ctx, req.Path)
	if err != nil {
		return handleError(c, err)
	}
	snapshotInvalidate(ctx, h.inv, inventory.KeyFiles)

	return c.JSON(http.StatusCreated, file)
}

// StageFile handles POST /v1/files/stage: fetch a document by URL into the
// staging directory, then upload it. YouTube URLs are never staged; the
// provider consumes them directly, so the response is a reference with the
// instruction the generation call should carry.
func (h *Handler) StageFile(c echo.Context) error {
	var req struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	if req.URL == "" {
		return handleError(c, core.NewInvalidRequestError("url is required", nil))
	}

	if isYouTubeURL(req.URL) {
		return c.JSON(http.StatusOK, map[string]any{
			"reference":   true,
			"uri":         req.URL,
			"instruction": buildVideoInstruction(req.URL),
		})
	}

	ctx := c.Request().Context()
	dest := filepath.Join(h.stagingDir, stagingFilename(req.URL, req.Filename))
	staged, err := h.console.DownloadToLocal(ctx, req.URL, dest)
	if err != nil {
		return handleError(c, err)
	}

	file, err := h.console.Upload(ctx, staged)
	if err != nil {
		return handleError(c, err)
	}
	snapshotInvalidate(ctx, h.inv, inventory.KeyFiles)

	return c.JSON(http.StatusCreated, map[string]any{
		"staged_path": staged,
		"file":        file,
	})
}

// ListFiles handles GET /v1/files, serving a recent snapshot when one exists.
func (h *Handler) ListFiles(c echo.Context) error {
	ctx := c.Request().Context()

	if files, ok := snapshotGet[[]core.RemoteFile](ctx, h.inv, inventory.KeyFiles, h.freshness); ok {
		return c.JSON(http.StatusOK, map[string]any{"files": files, "cached": true})
	}

	files := h.console.ListFiles(ctx)
	snapshotSet(ctx, h.inv, inventory.KeyFiles, files)

	return c.JSON(http.StatusOK, map[string]any{"files": files, "cached": false})
}

// GetFile handles GET /v1/files/:id
func (h *Handler) GetFile(c echo.Context) error {
	name, err := resourceName(c, "files")
	if err != nil {
		return handleError(c, err)
	}

	file := h.console.GetFile(c.Request().Context(), name)
	if file == nil {
		return handleError(c, core.NewNotFoundError("file not found: "+name, nil))
	}

	return c.JSON(http.StatusOK, file)
}

// DeleteFile handles DELETE /v1/files/:id
func (h *Handler) DeleteFile(c echo.Context) error {
	name, err := resourceName(c, "files")
	if err != nil {
		return handleError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.console.DeleteFile(ctx, name); err != nil {
		return handleError(c, err)
	}
	snapshotInvalidate(ctx, h.inv, inventory.KeyFiles)

	return c.JSON(http.StatusOK, map[string]any{"deleted": name})
}
