package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/usage"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

// BudgetChecker gates provider calls and charges their token cost.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(ctx context.Context, tokens int64)
	Remaining(period usage.Period) int64
}

// InstrumentedEmbedder is the outermost layer of the embedding chain.
// It enforces the token budget and attributes tokens to the request.
// Provider transport metrics are recorded by the providers themselves.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. budget may be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
}

// Embed refuses the call when the budget is exhausted, otherwise delegates
// and charges the reported tokens. Cache hits report zero tokens.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Warn("Embedding refused by budget", zap.Error(err))
			return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	elapsed := time.Since(start)
	if err != nil {
		p.logger.Error("Embedding failed", zap.Duration("duration", elapsed), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	domain.UsageFromContext(ctx).AddEmbedding(result.TotalTokens)
	p.charge(ctx, int64(result.TotalTokens))

	p.logger.Debug("Embedding completed",
		zap.Duration("duration", elapsed),
		zap.Int("tokens", result.TotalTokens),
		zap.Bool("token_level", result.IsTokenLevel()),
	)
	return result, nil
}

func (p *InstrumentedEmbedder) charge(ctx context.Context, tokens int64) {
	if p.budget == nil || tokens == 0 {
		return
	}
	p.budget.Record(ctx, tokens)
	for _, period := range []usage.Period{usage.PeriodDay, usage.PeriodMonth} {
		metrics.EmbeddingBudgetTokensRemaining.
			WithLabelValues(p.provider, string(period)).
			Set(float64(p.budget.Remaining(period)))
	}
}
