// Package gemini wraps the Gemini Files, Caches and Models APIs with the
// reliability layer the console depends on: a memoized client handle, bounded
// retries that degrade list reads to empty results, a blocking poll for
// asynchronous file processing, and content normalization ahead of cache
// creation.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"gemcache/internal/core"
	"gemcache/internal/observability"
)

// filesAPI is the slice of the provider's Files capability the console uses.
// The narrow seam keeps the reliability layer testable without the network.
type filesAPI interface {
	Upload(ctx context.Context, path string) (*genai.File, error)
	Get(ctx context.Context, name string) (*genai.File, error)
	List(ctx context.Context) ([]*genai.File, error)
	Delete(ctx context.Context, name string) error
}

// cachesAPI is the slice of the provider's cached-content capability in use.
type cachesAPI interface {
	Create(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error)
	Get(ctx context.Context, name string) (*genai.CachedContent, error)
	List(ctx context.Context) ([]*genai.CachedContent, error)
	Update(ctx context.Context, name string, cfg *genai.UpdateCachedContentConfig) (*genai.CachedContent, error)
	Delete(ctx context.Context, name string) error
}

// modelsAPI is the generation capability.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkFiles struct {
	c *genai.Client
}

func (s sdkFiles) Upload(ctx context.Context, path string) (*genai.File, error) {
	f, err := s.c.Files.UploadFromPath(ctx, path, nil)
	observability.ObserveCall("files.upload", err)
	return f, err
}

func (s sdkFiles) Get(ctx context.Context, name string) (*genai.File, error) {
	f, err := s.c.Files.Get(ctx, name, nil)
	observability.ObserveCall("files.get", err)
	return f, err
}

func (s sdkFiles) List(ctx context.Context) ([]*genai.File, error) {
	var files []*genai.File
	for f, err := range s.c.Files.All(ctx) {
		if err != nil {
			observability.ObserveCall("files.list", err)
			return nil, err
		}
		files = append(files, f)
	}
	observability.ObserveCall("files.list", nil)
	return files, nil
}

func (s sdkFiles) Delete(ctx context.Context, name string) error {
	_, err := s.c.Files.Delete(ctx, name, nil)
	observability.ObserveCall("files.delete", err)
	return err
}

type sdkCaches struct {
	c *genai.Client
}

func (s sdkCaches) Create(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error) {
	cc, err := s.c.Caches.Create(ctx, model, cfg)
	observability.ObserveCall("caches.create", err)
	return cc, err
}

func (s sdkCaches) Get(ctx context.Context, name string) (*genai.CachedContent, error) {
	cc, err := s.c.Caches.Get(ctx, name, nil)
	observability.ObserveCall("caches.get", err)
	return cc, err
}

func (s sdkCaches) List(ctx context.Context) ([]*genai.CachedContent, error) {
	var caches []*genai.CachedContent
	for cc, err := range s.c.Caches.All(ctx) {
		if err != nil {
			observability.ObserveCall("caches.list", err)
			return nil, err
		}
		caches = append(caches, cc)
	}
	observability.ObserveCall("caches.list", nil)
	return caches, nil
}

func (s sdkCaches) Update(ctx context.Context, name string, cfg *genai.UpdateCachedContentConfig) (*genai.CachedContent, error) {
	cc, err := s.c.Caches.Update(ctx, name, cfg)
	observability.ObserveCall("caches.update", err)
	return cc, err
}

func (s sdkCaches) Delete(ctx context.Context, name string) error {
	_, err := s.c.Caches.Delete(ctx, name, nil)
	observability.ObserveCall("caches.delete", err)
	return err
}

type sdkModels struct {
	c *genai.Client
}

func (s sdkModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := s.c.Models.GenerateContent(ctx, model, contents, cfg)
	observability.ObserveCall("models.generate", err)
	return resp, err
}

// fileFromSDK converts a provider file handle into the console's view of it.
// Unknown states collapse into FileStateOther, which the upload poller treats
// as terminal.
func fileFromSDK(f *genai.File) *core.RemoteFile {
	if f == nil {
		return nil
	}
	rf := &core.RemoteFile{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		URI:         f.URI,
		MIMEType:    f.MIMEType,
		State:       stateFromSDK(f.State),
		CreateTime:  f.CreateTime,
		ExpireTime:  f.ExpirationTime,
	}
	if f.SizeBytes != nil {
		rf.SizeBytes = *f.SizeBytes
	}
	return rf
}

func stateFromSDK(s genai.FileState) core.FileState {
	switch s {
	case genai.FileStateProcessing:
		return core.FileStateProcessing
	case genai.FileStateActive:
		return core.FileStateActive
	case genai.FileStateFailed:
		return core.FileStateFailed
	default:
		return core.FileStateOther
	}
}

func cacheFromSDK(cc *genai.CachedContent) *core.CacheResource {
	if cc == nil {
		return nil
	}
	r := &core.CacheResource{
		Name:        cc.Name,
		DisplayName: cc.DisplayName,
		Model:       cc.Model,
		CreateTime:  cc.CreateTime,
		UpdateTime:  cc.UpdateTime,
		ExpireTime:  cc.ExpireTime,
	}
	if cc.UsageMetadata != nil {
		r.CachedTokens = cc.UsageMetadata.TotalTokenCount
	}
	return r
}

// contentsToSDK converts normalized content items to provider contents.
// Placeholders never reach this point; Normalize resolves or drops them.
func contentsToSDK(items []core.ContentItem) []*genai.Content {
	out := make([]*genai.Content, 0, len(items))
	for _, it := range items {
		switch {
		case it.File != nil:
			out = append(out, genai.NewContentFromURI(it.File.URI, it.File.MIMEType, genai.RoleUser))
		case it.Text != "":
			out = append(out, genai.NewContentFromText(it.Text, genai.RoleUser))
		}
	}
	return out
}

func resultFromSDK(resp *genai.GenerateContentResponse) *core.GenerationResult {
	res := &core.GenerationResult{Text: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		res.Usage = core.Usage{
			PromptTokens:    u.PromptTokenCount,
			CachedTokens:    u.CachedContentTokenCount,
			CandidateTokens: u.CandidatesTokenCount,
			TotalTokens:     u.TotalTokenCount,
		}
	}
	return res
}
