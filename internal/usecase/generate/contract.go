package generate

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/index"
)

// CorpusReader returns the published notes corpus, or nil before the first upload.
type CorpusReader interface {
	Load() *index.Corpus
}

// Generator produces free-form model text.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}
