package domain

import (
	"context"
	"sync"
)

type requestUsageKey struct{}

// RequestUsage collects provider usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the use case;
// decorators write to it (possibly from several goroutines); the handler reads a
// Snapshot for response headers.
type RequestUsage struct {
	mu              sync.Mutex
	EmbeddingTokens int
	EmbeddingCalls  int
	ModelCalls      int
}

// UsageCounts is a point-in-time copy of RequestUsage.
type UsageCounts struct {
	EmbeddingTokens int
	EmbeddingCalls  int
	ModelCalls      int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, requestUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(requestUsageKey{}).(*RequestUsage)
	return u
}

// AddEmbedding records one embedding call (cache hits report 0 tokens).
func (u *RequestUsage) AddEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.EmbeddingTokens += tokens
	u.EmbeddingCalls++
	u.mu.Unlock()
}

// AddModelCall records one generation call.
func (u *RequestUsage) AddModelCall() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.ModelCalls++
	u.mu.Unlock()
}

// Snapshot returns the current counts.
func (u *RequestUsage) Snapshot() UsageCounts {
	if u == nil {
		return UsageCounts{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageCounts{
		EmbeddingTokens: u.EmbeddingTokens,
		EmbeddingCalls:  u.EmbeddingCalls,
		ModelCalls:      u.ModelCalls,
	}
}
