package corpus

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	domcorpus "github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/index"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Publisher atomically replaces the published corpus.
type Publisher interface {
	Swap(c *index.Corpus) *index.Corpus
}

// Chunker splits cleaned text into retrieval chunks.
type Chunker interface {
	Chunk(text string) []string
}

// SnapshotStore persists a corpus across restarts.
type SnapshotStore interface {
	Save(ctx context.Context, c *index.Corpus) error
	Load(ctx context.Context, kind domcorpus.Kind, dim int) (*index.Corpus, error)
}

// TextExtractor turns an uploaded file into raw text.
type TextExtractor interface {
	Extract(ctx context.Context, f ingest.File) (string, error)
}
