package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

// RateLimitedEmbedder throttles outbound provider calls.
type RateLimitedEmbedder struct {
	inner   domain.Embedder
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder returns inner unchanged when perSec is not positive.
func NewRateLimitedEmbedder(inner domain.Embedder, perSec float64, burst int) domain.Embedder {
	if perSec <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{inner: inner, limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Embed waits for a token, then delegates.
func (r *RateLimitedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embedding rate limit wait: %w", err)
	}
	return r.inner.Embed(ctx, text)
}
