// Package metrics holds the service's Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric exported by the service.
const Namespace = "realitycheck"

// Embedding collectors. Provider calls are counted by the providers;
// the cache and budget layers of the chain own the rest.
var (
	// EmbeddingRequestsTotal counts provider calls; status is "success" or "error".
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Embedding provider calls by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	// EmbeddingRequestDuration observes successful provider calls only.
	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Latency of successful embedding provider calls",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 11),
		},
		[]string{"provider", "model"},
	)

	// EmbeddingTokensTotal splits usage into "prompt" and "total" by the type label.
	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "embedding",
			Name:      "tokens_total",
			Help:      "Embedding tokens billed by the provider",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "embedding",
			Name:      "errors_total",
			Help:      "Failed embedding provider calls by kind",
		},
		[]string{"provider", "model", "error_type"},
	)

	// EmbeddingBudgetTokensRemaining is -1 for a period without a limit.
	EmbeddingBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "embedding",
			Name:      "budget_tokens_remaining",
			Help:      "Tokens left in the current budget window",
		},
		[]string{"provider", "period"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "embedding",
			Name:      "cache_total",
			Help:      "Embedding cache lookups by level (lru, kv) and result (hit, miss)",
		},
		[]string{"level", "result"},
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers the embedding collectors. Safe to call more than once.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingBudgetTokensRemaining,
		EmbeddingCacheTotal,
	)
	embMetricsRegistered = true
}
