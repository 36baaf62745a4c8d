package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"gemcache/internal/core"
	"gemcache/internal/observability"
)

// errorClass splits remote failures into the three classes the retry policy
// distinguishes: transient server trouble worth retrying, client/request
// errors that will not improve on retry, and everything else.
type errorClass int

const (
	classTransient errorClass = iota
	classClient
	classOther
)

func classify(err error) errorClass {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= http.StatusInternalServerError {
			return classTransient
		}
		return classClient
	}
	return classOther
}

// wrapRemoteErr converts a provider failure on a write/delete/generate path
// into the console's error taxonomy. These paths always propagate.
func wrapRemoteErr(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code < http.StatusInternalServerError {
		if apiErr.Code == http.StatusNotFound {
			return core.NewNotFoundError(fmt.Sprintf("%s: %s", op, apiErr.Message), err)
		}
		return core.NewInvalidRequestError(fmt.Sprintf("%s: %s", op, apiErr.Message), err)
	}
	return core.NewProviderError(fmt.Sprintf("%s failed", op), err)
}

// sleepCtx blocks for d or until ctx is done, reporting whether the full
// wait elapsed. The caller stays sequential; only the goroutine's timer is
// non-blocking.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// safeList invokes a list-style remote call with bounded retries on transient
// server errors and degrades every failure to an empty result. Inventory
// screens must never crash on a listing failure, so this helper has exactly
// two outcomes: the listing, or empty.
func safeList[T any](ctx context.Context, op string, retries int, backoff time.Duration, call func(context.Context) ([]T, error)) []T {
	for attempt := 0; ; attempt++ {
		items, err := call(ctx)
		if err == nil {
			if items == nil {
				items = []T{}
			}
			return items
		}
		switch classify(err) {
		case classTransient:
			if attempt < retries {
				observability.ProviderRetries.WithLabelValues(op).Inc()
				if !sleepCtx(ctx, backoff) {
					return []T{}
				}
				continue
			}
			slog.Warn("listing degraded to empty after retries", "op", op, "attempts", attempt+1, "error", err)
			return []T{}
		case classClient:
			slog.Warn("listing degraded to empty", "op", op, "error", err)
			return []T{}
		default:
			// Unexpected failure class; log loudly so a new bug class
			// does not hide behind the degradation policy.
			slog.Error("unexpected listing failure, degrading to empty", "op", op, "error", err)
			return []T{}
		}
	}
}
