package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"gemcache/internal/core"
	"gemcache/internal/httpclient"
)

// Defaults for the reliability layer. The retry budgets are deliberately
// small and finite; no loop in this package runs unbounded.
const (
	defaultPollInterval = 2 * time.Second
	defaultListRetries  = 2
	defaultListBackoff  = 700 * time.Millisecond
	defaultGetRetries   = 3
	defaultGetDelay     = 800 * time.Millisecond
)

// envAPIKey is the environment credential read when no explicit key is given.
const envAPIKey = "GEMINI_API_KEY"

var (
	memoMu sync.Mutex
	memo   *Client
)

// Client is the console's handle on the provider. It is constructed once per
// process by Initialize and passed by reference into every component that
// needs it. All fields are read-only after construction.
type Client struct {
	files  filesAPI
	caches cachesAPI
	models modelsAPI
	http   *http.Client

	// DownloadSkipExisting switches DownloadToLocal from overwrite to
	// skip-if-present. Set before the client is shared.
	DownloadSkipExisting bool

	pollInterval time.Duration
	listRetries  int
	listBackoff  time.Duration
	getRetries   int
	getDelay     time.Duration
}

// Initialize returns the memoized client, ignoring the argument once a handle
// exists: the first successful initialization wins for the process lifetime.
// A credential is resolved in order: explicit argument, then .env /
// environment GEMINI_API_KEY. Neither yielding a value is a configuration
// error.
func Initialize(ctx context.Context, apiKey string) (*Client, error) {
	memoMu.Lock()
	defer memoMu.Unlock()
	if memo != nil {
		return memo, nil
	}

	_ = godotenv.Load()
	key := apiKey
	if key == "" {
		key = os.Getenv(envAPIKey)
	}
	if key == "" {
		return nil, core.NewConfigurationError(
			fmt.Sprintf("%s is not set; provide it via .env, the environment, or an explicit key", envAPIKey))
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		ce := core.NewConfigurationError("failed to construct Gemini client")
		ce.Err = err
		return nil, ce
	}

	memo = newClient(sdkFiles{sdk}, sdkCaches{sdk}, sdkModels{sdk})
	return memo, nil
}

// Reset clears the memoized handle so the next Initialize constructs a fresh
// one. Used by tests and by the console's clear-API-key action.
func Reset() {
	memoMu.Lock()
	memo = nil
	memoMu.Unlock()
}

func newClient(f filesAPI, c cachesAPI, m modelsAPI) *Client {
	return &Client{
		files:        f,
		caches:       c,
		models:       m,
		http:         httpclient.NewDefaultHTTPClient(),
		pollInterval: defaultPollInterval,
		listRetries:  defaultListRetries,
		listBackoff:  defaultListBackoff,
		getRetries:   defaultGetRetries,
		getDelay:     defaultGetDelay,
	}
}
