package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

// RateLimitedGenerator throttles generation calls.
type RateLimitedGenerator struct {
	inner   domain.Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator returns inner unchanged when perSec is not positive.
func NewRateLimitedGenerator(inner domain.Generator, perSec float64, burst int) domain.Generator {
	if perSec <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGenerator{inner: inner, limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Generate waits for a token, then delegates.
func (r *RateLimitedGenerator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("generation rate limit wait: %w", err)
	}
	return r.inner.Generate(ctx, prompt, opts)
}
