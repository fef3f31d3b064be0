package embedding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/vector"
)

// NormalizingEmbedder turns whatever a provider returns into a unit vector of
// exactly dim components. Input longer than maxInputChars runes is cut before
// it leaves the process.
type NormalizingEmbedder struct {
	inner         domain.Embedder
	dim           int
	maxInputChars int
}

// NewNormalizingEmbedder wraps a raw provider.
func NewNormalizingEmbedder(inner domain.Embedder, dim, maxInputChars int) (*NormalizingEmbedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dim)
	}
	return &NormalizingEmbedder{inner: inner, dim: dim, maxInputChars: maxInputChars}, nil
}

// Dim returns the output dimension.
func (n *NormalizingEmbedder) Dim() int { return n.dim }

// Embed truncates the input, pools token-level output, fits it to dim and L2-normalizes.
func (n *NormalizingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if n.maxInputChars > 0 {
		text = corpus.Truncate(text, n.maxInputChars)
	}

	res, err := n.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	raw := res.Embedding
	if res.IsTokenLevel() {
		raw = vector.MeanPool(res.Tokens)
	}
	if len(raw) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("provider returned no vector: %w", domain.ErrMalformedResponse)
	}

	return domain.EmbeddingResult{
		Embedding:    vector.Normalize(vector.Fit(raw, n.dim)),
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}
