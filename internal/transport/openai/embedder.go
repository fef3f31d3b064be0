// Package openai talks to OpenAI-compatible endpoints for embeddings and chat completions.
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

// Config holds the settings shared by Embedder and Generator.
type Config struct {
	APIKey     string
	BaseURL    string // empty means api.openai.com
	Model      string
	Dimensions int           // shortened vectors where the model supports them, 0 keeps the native size
	Timeout    time.Duration // per call, 0 leaves only the caller's deadline
	Provider   string        // metrics and log label
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Embedder turns text into a single dense vector.
type Embedder struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
	provider   string
	logger     *zap.Logger
}

// NewEmbedder creates an embedder bound to cfg.Model.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.dimensions,
	})
	elapsed := time.Since(start)

	switch {
	case err != nil:
		e.fail("api_error")
		e.logger.Warn("Embedding call failed",
			zap.String("provider", e.provider),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, parseAPIError(e.provider, err)
	case len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0:
		e.fail("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("%s returned no vector: %w", e.provider, domain.ErrMalformedResponse)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model).Observe(elapsed.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		tokens := metrics.EmbeddingTokensTotal.MustCurryWith(map[string]string{"provider": e.provider, "model": e.model})
		tokens.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
		tokens.WithLabelValues("total").Add(float64(usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
	}, nil
}

func (e *Embedder) fail(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, kind).Inc()
}

// HealthCheck asks the endpoint for the configured model, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.GetModel(ctx, e.model); err != nil {
		return fmt.Errorf("get model %s: %w", e.model, err)
	}
	return nil
}
