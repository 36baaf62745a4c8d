package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"gemcache/internal/core"
	"gemcache/internal/usage"
)

// generateRequest is the body of POST /v1/generate. A cache_name selects
// explicit mode (the cache supplies context and system instruction); without
// one the request runs implicitly with the given system instruction. Prompts
// run sequentially and each gets its own result.
type generateRequest struct {
	Model             string   `json:"model"`
	CacheName         string   `json:"cache_name"`
	SystemInstruction string   `json:"system_instruction"`
	Prompt            string   `json:"prompt"`
	Prompts           []string `json:"prompts"`
}

type generateResult struct {
	Prompt string      `json:"prompt"`
	Text   string      `json:"text,omitempty"`
	Usage  *core.Usage `json:"usage,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Generate handles POST /v1/generate
func (h *Handler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	if req.Model == "" {
		return handleError(c, core.NewInvalidRequestError("model is required", nil))
	}

	prompts := req.Prompts
	if len(prompts) == 0 && req.Prompt != "" {
		prompts = []string{req.Prompt}
	}
	if len(prompts) == 0 {
		return handleError(c, core.NewInvalidRequestError("prompt or prompts is required", nil))
	}

	mode := usage.ModeImplicit
	if req.CacheName != "" {
		mode = usage.ModeExplicit
	}

	ctx := c.Request().Context()
	results := make([]generateResult, 0, len(prompts))
	for _, prompt := range prompts {
		var (
			res *core.GenerationResult
			err error
		)
		if mode == usage.ModeExplicit {
			res, err = h.console.GenerateFromCache(ctx, req.Model, req.CacheName, prompt)
		} else {
			res, err = h.console.GenerateImplicit(ctx, req.Model, req.SystemInstruction, prompt)
		}

		if err != nil {
			// One bad prompt must not sink the rest of the batch.
			results = append(results, generateResult{Prompt: prompt, Error: err.Error()})
			continue
		}

		u := res.Usage
		results = append(results, generateResult{Prompt: prompt, Text: res.Text, Usage: &u})

		h.usageLogger.Write(&usage.UsageEntry{
			ID:              uuid.NewString(),
			RequestID:       requestID(c),
			Timestamp:       time.Now(),
			Model:           req.Model,
			Mode:            mode,
			CacheName:       req.CacheName,
			PromptTokens:    u.PromptTokens,
			CachedTokens:    u.CachedTokens,
			CandidateTokens: u.CandidateTokens,
			TotalTokens:     u.TotalTokens,
		})
	}

	resp := map[string]any{
		"model":   req.Model,
		"mode":    mode,
		"results": results,
	}
	if mode == usage.ModeImplicit {
		if info := core.DescribeModel(req.Model); !info.ImplicitCacheOK {
			resp["warning"] = "model does not support implicit caching; repeated prefixes will be billed in full"
		}
	}

	return c.JSON(http.StatusOK, resp)
}
