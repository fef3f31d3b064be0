package domain

import (
	"context"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding and token usage through the decorator chain.
//
// Providers return either a flat sentence vector in Embedding or token-level vectors
// in Tokens (feature-extraction endpoints). After the normalizing decorator only
// Embedding is set.
type EmbeddingResult struct {
	Embedding    []float32
	Tokens       [][]float32
	PromptTokens int
	TotalTokens  int
}

// IsTokenLevel reports whether the provider returned per-token vectors.
func (r EmbeddingResult) IsTokenLevel() bool {
	return len(r.Embedding) == 0 && len(r.Tokens) > 0
}
