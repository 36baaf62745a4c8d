package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"gemcache/internal/core"
)

func TestGenerateFromCache(t *testing.T) {
	var gotModel string
	var gotContents []*genai.Content
	var gotCfg *genai.GenerateContentConfig
	models := &fakeModels{
		generateFn: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel, gotContents, gotCfg = model, contents, cfg
			resp := textResponse("pong")
			resp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:        5000,
				CachedContentTokenCount: 4500,
				CandidatesTokenCount:    20,
				TotalTokenCount:         5020,
			}
			return resp, nil
		},
	}
	c := testClient(nil, nil, models)

	res, err := c.GenerateFromCache(context.Background(), "models/gemini-2.0-flash-001", "cachedContents/c1", "ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "pong" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if res.Usage.CachedTokens != 4500 || res.Usage.TotalTokens != 5020 {
		t.Errorf("unexpected usage %+v", res.Usage)
	}
	if gotModel != "models/gemini-2.0-flash-001" {
		t.Errorf("unexpected model %q", gotModel)
	}
	if gotCfg.CachedContent != "cachedContents/c1" {
		t.Errorf("expected cache binding, got %q", gotCfg.CachedContent)
	}
	if gotCfg.SystemInstruction != nil {
		t.Error("cache-bound generation must not carry a system instruction")
	}
	if len(gotContents) != 1 {
		t.Errorf("expected 1 content, got %d", len(gotContents))
	}
}

func TestGenerateImplicit(t *testing.T) {
	var gotCfg *genai.GenerateContentConfig
	models := &fakeModels{
		generateFn: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotCfg = cfg
			return textResponse("answer"), nil
		},
	}
	c := testClient(nil, nil, models)

	res, err := c.GenerateImplicit(context.Background(), "models/gemini-2.5-flash", "answer briefly", "what is it?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "answer" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if gotCfg.SystemInstruction == nil {
		t.Error("expected system instruction to be set")
	}
	if gotCfg.CachedContent != "" {
		t.Errorf("implicit generation must not bind a cache, got %q", gotCfg.CachedContent)
	}
}

func TestGenerateImplicitNoInstruction(t *testing.T) {
	var gotCfg *genai.GenerateContentConfig
	models := &fakeModels{
		generateFn: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotCfg = cfg
			return textResponse("ok"), nil
		},
	}
	c := testClient(nil, nil, models)

	if _, err := c.GenerateImplicit(context.Background(), "models/gemini-2.5-flash", "", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCfg.SystemInstruction != nil {
		t.Error("empty instruction must stay unset")
	}
}

func TestGeneratePropagatesErrors(t *testing.T) {
	models := &fakeModels{
		generateFn: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, apiError(404, "cache expired")
		},
	}
	c := testClient(nil, nil, models)

	_, err := c.GenerateFromCache(context.Background(), "models/gemini-2.0-flash-001", "cachedContents/gone", "ping")
	if core.TypeOf(err) != core.ErrorTypeNotFound {
		t.Errorf("expected not_found_error, got %v", err)
	}

	_, err = c.GenerateImplicit(context.Background(), "models/gemini-2.5-flash", "", "ping")
	if core.TypeOf(err) != core.ErrorTypeNotFound {
		t.Errorf("expected not_found_error, got %v", err)
	}
}

func TestSupportedModels(t *testing.T) {
	infos := SupportedModels()
	if len(infos) != 4 {
		t.Fatalf("expected 4 models, got %d", len(infos))
	}

	byID := make(map[string]core.ModelInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	if !byID["models/gemini-2.0-flash-001"].ExplicitCacheOK {
		t.Error("pinned 2.0 flash must be explicit-cache eligible")
	}
	if byID["models/gemini-2.5-pro"].ExplicitCacheOK {
		t.Error("unpinned 2.5 pro must not be explicit-cache eligible")
	}
	if !byID["models/gemini-2.5-pro"].ImplicitCacheOK {
		t.Error("2.5 pro must be implicit-cache eligible")
	}
	if byID["models/gemini-1.5-pro-001"].ImplicitCacheOK {
		t.Error("1.5 pro must not be implicit-cache eligible")
	}

	if !IsSupportedModel("models/gemini-2.5-flash") {
		t.Error("expected 2.5 flash in the catalog")
	}
	if IsSupportedModel("models/gemini-9000") {
		t.Error("unexpected model in the catalog")
	}
}
