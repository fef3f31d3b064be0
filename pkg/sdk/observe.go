package realitycheck

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// call tracks one SDK operation from start to finish, including the
// provider cost the server reports in its usage headers.
type call struct {
	op              string
	start           time.Time
	embeddingTokens int
	modelCalls      int
}

func newCall(op string) *call { return &call{op: op, start: time.Now()} }

// charge reads the usage headers of a response. Missing headers count as zero.
func (c *call) charge(h http.Header) {
	tokens, _ := strconv.Atoi(h.Get("X-Embedding-Tokens"))
	calls, _ := strconv.Atoi(h.Get("X-Model-Calls"))
	c.embeddingTokens, c.modelCalls = max(0, tokens), max(0, calls)
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	tokens     *prometheus.CounterVec
	modelCalls *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: "realitycheck", Subsystem: "sdk", Name: name, Help: help}
	}
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(opts("operations_total",
			"SDK calls by operation and status."), []string{"operation", "status"}),
		tokens: prometheus.NewCounterVec(opts("embedding_tokens_total",
			"Embedding tokens the server spent on SDK calls."), []string{"operation"}),
		modelCalls: prometheus.NewCounterVec(opts("model_calls_total",
			"Generation calls the server made for SDK calls."), []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "realitycheck",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call duration in seconds, including the network round trip.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		}, []string{"operation"}),
	}
	for _, err := range []error{
		registerOrReuse(reg, &m.operations),
		registerOrReuse(reg, &m.duration),
		registerOrReuse(reg, &m.tokens),
		registerOrReuse(reg, &m.modelCalls),
	} {
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered under its name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("realitycheck: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("realitycheck: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts SDK calls. A nil observer or nil fields disable each part.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe finishes c. The status label is "ok", the API error code,
// or "transport" when no response arrived.
func (o *observer) observe(c *call, err error) {
	if o == nil {
		return
	}
	dur := time.Since(c.start)
	status := statusOf(err)

	if m := o.metrics; m != nil {
		m.operations.WithLabelValues(c.op, status).Inc()
		m.duration.WithLabelValues(c.op).Observe(dur.Seconds())
		m.tokens.WithLabelValues(c.op).Add(float64(c.embeddingTokens))
		m.modelCalls.WithLabelValues(c.op).Add(float64(c.modelCalls))
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", c.op, "duration", dur, "embedding_tokens", c.embeddingTokens, "model_calls", c.modelCalls}
	if err != nil {
		o.logger.Warn("call failed", append(attrs, "status", status, "error", err)...)
		return
	}
	o.logger.Debug("call completed", attrs...)
}

func statusOf(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "transport"
}
