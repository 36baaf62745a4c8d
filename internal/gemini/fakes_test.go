package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// fakeFiles implements filesAPI for tests. Each func field defaults to a
// benign success when nil; counters record the calls made.
type fakeFiles struct {
	uploadFn func(ctx context.Context, path string) (*genai.File, error)
	getFn    func(ctx context.Context, name string) (*genai.File, error)
	listFn   func(ctx context.Context) ([]*genai.File, error)
	deleteFn func(ctx context.Context, name string) error

	uploads, gets, lists, deletes int
}

func (f *fakeFiles) Upload(ctx context.Context, path string) (*genai.File, error) {
	f.uploads++
	if f.uploadFn != nil {
		return f.uploadFn(ctx, path)
	}
	return &genai.File{Name: "files/fake", State: genai.FileStateActive}, nil
}

func (f *fakeFiles) Get(ctx context.Context, name string) (*genai.File, error) {
	f.gets++
	if f.getFn != nil {
		return f.getFn(ctx, name)
	}
	return &genai.File{Name: name, State: genai.FileStateActive}, nil
}

func (f *fakeFiles) List(ctx context.Context) ([]*genai.File, error) {
	f.lists++
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeFiles) Delete(ctx context.Context, name string) error {
	f.deletes++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, name)
	}
	return nil
}

// fakeCaches implements cachesAPI for tests.
type fakeCaches struct {
	createFn func(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error)
	getFn    func(ctx context.Context, name string) (*genai.CachedContent, error)
	listFn   func(ctx context.Context) ([]*genai.CachedContent, error)
	updateFn func(ctx context.Context, name string, cfg *genai.UpdateCachedContentConfig) (*genai.CachedContent, error)
	deleteFn func(ctx context.Context, name string) error

	creates, gets, lists, updates, deletes int
}

func (f *fakeCaches) Create(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error) {
	f.creates++
	if f.createFn != nil {
		return f.createFn(ctx, model, cfg)
	}
	return &genai.CachedContent{Name: "cachedContents/fake", Model: model}, nil
}

func (f *fakeCaches) Get(ctx context.Context, name string) (*genai.CachedContent, error) {
	f.gets++
	if f.getFn != nil {
		return f.getFn(ctx, name)
	}
	return &genai.CachedContent{Name: name}, nil
}

func (f *fakeCaches) List(ctx context.Context) ([]*genai.CachedContent, error) {
	f.lists++
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeCaches) Update(ctx context.Context, name string, cfg *genai.UpdateCachedContentConfig) (*genai.CachedContent, error) {
	f.updates++
	if f.updateFn != nil {
		return f.updateFn(ctx, name, cfg)
	}
	return &genai.CachedContent{Name: name}, nil
}

func (f *fakeCaches) Delete(ctx context.Context, name string) error {
	f.deletes++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, name)
	}
	return nil
}

// fakeModels implements modelsAPI for tests.
type fakeModels struct {
	generateFn func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	generates int
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.generates++
	if f.generateFn != nil {
		return f.generateFn(ctx, model, contents, cfg)
	}
	return textResponse("ok"), nil
}

// textResponse builds a minimal generation response carrying text.
func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

// testClient builds a client over fakes with delays shrunk so retry and poll
// paths run fast.
func testClient(f filesAPI, c cachesAPI, m modelsAPI) *Client {
	cl := newClient(f, c, m)
	cl.pollInterval = time.Millisecond
	cl.listBackoff = time.Millisecond
	cl.getDelay = time.Millisecond
	return cl
}

// apiError builds the provider error shape used across the tests.
func apiError(code int, message string) error {
	return genai.APIError{Code: code, Message: message}
}
