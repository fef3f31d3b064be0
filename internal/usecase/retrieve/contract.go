package retrieve

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/index"
)

// CorpusReader returns the currently published corpus (nil if none).
type CorpusReader interface {
	Load() *index.Corpus
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
