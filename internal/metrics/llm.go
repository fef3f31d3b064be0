package metrics

import "github.com/prometheus/client_golang/prometheus"

// Language model Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of generation requests per model",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"model"},
	)

	// LLMExtractionTotal counts which extraction strategy produced structured output.
	// strategy is "none" when every strategy failed.
	LLMExtractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "llm_extraction_total",
			Help:      "Structured output extraction outcomes by pipeline and strategy",
		},
		[]string{"pipeline", "strategy"},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers Prometheus generation metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMExtractionTotal)
	llmMetricsRegistered = true
}
