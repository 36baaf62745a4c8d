// Package observability provides Prometheus metrics for provider calls.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCalls counts remote provider calls by operation and outcome.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemcache_provider_calls_total",
			Help: "Remote Gemini API calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// ProviderRetries counts retry attempts triggered by transient provider errors.
	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemcache_provider_retries_total",
			Help: "Retries after transient provider errors, by operation.",
		},
		[]string{"op"},
	)

	// UploadWaitSeconds observes how long uploads wait for provider-side processing.
	UploadWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gemcache_upload_wait_seconds",
			Help:    "Time spent polling until an uploaded file leaves the processing state.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// ObserveCall records the outcome of a provider call.
func ObserveCall(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderCalls.WithLabelValues(op, outcome).Inc()
}
