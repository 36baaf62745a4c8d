package gemini

import (
	"context"

	"google.golang.org/genai"

	"gemcache/internal/core"
)

// GenerateFromCache issues a generation request bound to an explicit cache.
// No system instruction is sent; the cache already embeds it. Cache
// eligibility of the model (pinned "-001" suffix) is a caller precondition,
// not enforced here. Remote failures propagate untouched.
func (c *Client) GenerateFromCache(ctx context.Context, model, cacheName, prompt string) (*core.GenerationResult, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		CachedContent: cacheName,
	})
	if err != nil {
		return nil, wrapRemoteErr("generation", err)
	}
	return resultFromSDK(resp), nil
}

// GenerateImplicit issues a generation request carrying only a system
// instruction and the prompt, relying on the provider's implicit caching for
// repeated-prefix workloads. Remote failures propagate untouched.
func (c *Client) GenerateImplicit(ctx context.Context, model, systemInstruction, prompt string) (*core.GenerationResult, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, "")
	}
	resp, err := c.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, wrapRemoteErr("generation", err)
	}
	return resultFromSDK(resp), nil
}
