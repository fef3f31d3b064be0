package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

// Generator is a single-model chat completion provider.
// Works against any OpenAI-compatible endpoint (OpenAI, HF router, Workers AI).
type Generator struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	provider string
	logger   *zap.Logger
}

// NewGenerator creates a generator bound to cfg.Model.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		client:   newClient(cfg),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Model returns the bound model name.
func (g *Generator) Model() string { return g.model }

// Generate implements domain.Generator. The prompt is sent as a single user message.
func (g *Generator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)
	metrics.LLMRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.model, "error").Inc()
		g.logger.Error("Generation request failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", parseAPIError(g.provider, err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", fmt.Errorf("%s returned no choices: %w", g.model, domain.ErrProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.model, "success").Inc()
	domain.UsageFromContext(ctx).AddModelCall()

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	g.logger.Debug("Generation request completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("completion_chars", len(text)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return text, nil
}
