package ask

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/index"
)

// CorpusReader returns the published notes corpus, or nil before the first upload.
type CorpusReader interface {
	Load() *index.Corpus
}

// Embedder vectorizes questions, answers and cited sources.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces free-form model text.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}
