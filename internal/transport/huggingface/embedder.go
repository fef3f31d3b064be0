// Package huggingface implements the feature-extraction embedding provider.
// The endpoint answers with either a flat vector or one vector per token,
// sometimes wrapped in an extra batch dimension.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

const (
	providerName = "huggingface"
	maxErrorBody = 4096
)

// Config holds the provider settings.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
	Client  *http.Client
	Logger  *zap.Logger
}

// Embedder calls a Hugging Face feature-extraction endpoint.
type Embedder struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	logger *zap.Logger
}

// NewEmbedder creates the provider. A nil Client gets one with cfg.Timeout.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	if cfg.URL == "" {
		return nil, errors.New("huggingface url is required")
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: client,
		logger: logger,
	}, nil
}

type request struct {
	Inputs  string         `json:"inputs"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(request{Inputs: text, Options: requestOptions{WaitForModel: true}})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		e.fail("transport")
		return domain.EmbeddingResult{}, fmt.Errorf("%s request: %v: %w", providerName, err, domain.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e.fail(fmt.Sprintf("status_%d", resp.StatusCode))
		return domain.EmbeddingResult{}, domain.NewProviderStatusError(providerName, resp.StatusCode, string(detail))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		e.fail("transport")
		return domain.EmbeddingResult{}, fmt.Errorf("%s read body: %v: %w", providerName, err, domain.ErrTransport)
	}

	result, err := decodePayload(payload)
	if err != nil {
		e.fail("malformed")
		return domain.EmbeddingResult{}, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	// The endpoint reports no usage; whitespace-separated words stand in for tokens.
	tokens := estimateTokens(text)
	result.PromptTokens = tokens
	result.TotalTokens = tokens
	metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "total").Add(float64(tokens))

	e.logger.Debug("Embedding request completed",
		zap.String("provider", providerName),
		zap.String("model", e.model),
		zap.Duration("duration", duration),
		zap.Bool("token_level", result.IsTokenLevel()),
	)
	return result, nil
}

func (e *Embedder) fail(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, kind).Inc()
}
