package metrics

import "github.com/prometheus/client_golang/prometheus"

// Corpus index Prometheus metrics.
var (
	CorpusEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "corpus_entries",
			Help:      "Number of entries in the published corpus",
		},
		[]string{"corpus"},
	)

	CorpusRebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "corpus_rebuild_duration_seconds",
			Help:      "Time to embed and publish a corpus",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"corpus"},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers Prometheus corpus metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(CorpusEntries)
	prometheus.MustRegister(CorpusRebuildDuration)
	indexMetricsRegistered = true
}
