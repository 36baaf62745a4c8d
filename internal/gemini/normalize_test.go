package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"gemcache/internal/core"
)

func TestNormalizeMixedContent(t *testing.T) {
	files := &fakeFiles{
		getFn: func(ctx context.Context, name string) (*genai.File, error) {
			if name == "files/known" {
				return &genai.File{Name: name, URI: "https://files/known", State: genai.FileStateActive}, nil
			}
			return nil, apiError(404, "missing")
		},
	}
	c := testClient(files, nil, nil)

	items := []core.ContentItem{
		{Text: "chapter one"},
		{FileRef: "files/known"},
		{FileRef: "files/unknown"},
		{File: &core.RemoteFile{Name: "files/resolved", URI: "https://files/resolved"}},
		{}, // zero item drops
	}

	got := c.Normalize(context.Background(), items)

	if len(got) != 3 {
		t.Fatalf("expected 3 survivors, got %d: %+v", len(got), got)
	}
	// Order of survivors matches the input.
	if got[0].Text != "chapter one" {
		t.Errorf("expected text first, got %+v", got[0])
	}
	if got[1].File == nil || got[1].File.Name != "files/known" {
		t.Errorf("expected resolved placeholder second, got %+v", got[1])
	}
	if got[2].File == nil || got[2].File.Name != "files/resolved" {
		t.Errorf("expected pass-through handle third, got %+v", got[2])
	}
	for i, it := range got {
		if it.IsPlaceholder() {
			t.Errorf("item %d is still a placeholder after normalization", i)
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	c := testClient(&fakeFiles{}, nil, nil)
	got := c.Normalize(context.Background(), nil)
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}
