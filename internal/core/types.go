// Package core provides domain types and the error taxonomy for the
// Gemini cache console.
package core

import (
	"strings"
	"time"
)

// FileState is the provider-reported processing state of a remote file.
type FileState string

const (
	// FileStateProcessing means the provider is still ingesting the file
	// (video transcoding, PDF extraction, ...). Uploads poll until the
	// file leaves this state.
	FileStateProcessing FileState = "PROCESSING"
	// FileStateActive means the file is ready to be referenced.
	FileStateActive FileState = "ACTIVE"
	// FileStateFailed means provider-side processing failed.
	FileStateFailed FileState = "FAILED"
	// FileStateOther covers every state this console does not recognize.
	// Unknown states are terminal from the poller's point of view.
	FileStateOther FileState = "OTHER"
)

// Terminal reports whether the state ends the upload processing poll.
func (s FileState) Terminal() bool {
	return s != FileStateProcessing
}

// RemoteFile is a reference to a file owned by the provider's Files API.
type RemoteFile struct {
	// Name is the provider-assigned identifier, e.g. "files/abc123".
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	URI         string    `json:"uri,omitempty"`
	MIMEType    string    `json:"mime_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	State       FileState `json:"state"`
	CreateTime  time.Time `json:"create_time,omitzero"`
	ExpireTime  time.Time `json:"expire_time,omitzero"`
}

// CacheResource is an explicit cached-content resource owned by the provider.
type CacheResource struct {
	// Name is the provider-assigned identifier, e.g. "cachedContents/xyz".
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	Model       string    `json:"model"`
	CreateTime  time.Time `json:"create_time,omitzero"`
	UpdateTime  time.Time `json:"update_time,omitzero"`
	ExpireTime  time.Time `json:"expire_time,omitzero"`
	// CachedTokens is the provider-counted token total held by the cache.
	CachedTokens int32 `json:"cached_tokens,omitempty"`
}

// ContentItem is one element of a cache-creation request. Exactly one field
// is set: literal text, an already-resolved file handle, or a name-only
// placeholder saved from an earlier step. Normalization resolves placeholders
// into live handles and drops the ones that cannot be resolved.
type ContentItem struct {
	Text    string      `json:"text,omitempty"`
	File    *RemoteFile `json:"file,omitempty"`
	FileRef string      `json:"file_ref,omitempty"`
}

// IsPlaceholder reports whether the item is an unresolved name-only reference.
func (it ContentItem) IsPlaceholder() bool {
	return it.File == nil && it.Text == "" && it.FileRef != ""
}

// IsZero reports whether the item carries no content at all.
func (it ContentItem) IsZero() bool {
	return it.Text == "" && it.File == nil && it.FileRef == ""
}

// Usage holds the token accounting returned with a generation response.
type Usage struct {
	PromptTokens    int32 `json:"prompt_tokens"`
	CachedTokens    int32 `json:"cached_tokens"`
	CandidateTokens int32 `json:"candidate_tokens"`
	TotalTokens     int32 `json:"total_tokens"`
}

// GenerationResult is the outcome of a single generation request. It is
// ephemeral; the console records only its usage numbers.
type GenerationResult struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// ModelInfo describes one of the models the console offers, with the
// caller-side eligibility hints the UI renders as warnings. Eligibility is
// advisory only; the cache-creation path does not enforce it.
type ModelInfo struct {
	ID              string `json:"id"`
	ExplicitCacheOK bool   `json:"explicit_cache_ok"`
	ImplicitCacheOK bool   `json:"implicit_cache_ok"`
}

// DescribeModel derives the eligibility hints for a model identifier.
// Explicit caching wants a pinned version suffix ("-001"); implicit caching
// is automatic on the 2.5 family.
func DescribeModel(modelID string) ModelInfo {
	return ModelInfo{
		ID:              modelID,
		ExplicitCacheOK: strings.HasSuffix(modelID, "-001"),
		ImplicitCacheOK: strings.Contains(modelID, "2.5"),
	}
}
