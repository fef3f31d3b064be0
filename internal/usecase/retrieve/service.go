package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	"github.com/kailas-cloud/realitycheck/internal/index"
)

// Service retrieves the closest documents of one corpus.
type Service struct {
	corpus CorpusReader
	embed  Embedder
}

// New creates a retrieval service over the given corpus holder.
func New(corpus CorpusReader, embed Embedder) *Service {
	return &Service{corpus: corpus, embed: embed}
}

// Retrieve returns up to k documents ranked by similarity to text.
// An empty or unpublished corpus yields an empty slice without calling the embedder.
func (s *Service) Retrieve(ctx context.Context, text string, k int) ([]result.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is empty: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}
	return Search(ctx, s.embed, s.corpus.Load(), text, k)
}

// Search runs one query against a fixed corpus. Callers that need the hits and the
// documents to agree load the corpus once and pass it here.
func Search(ctx context.Context, embed Embedder, c *index.Corpus, text string, k int) ([]result.Result, error) {
	if c.Len() == 0 {
		return []result.Result{}, nil
	}

	emb, err := embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits := c.Index.Search(emb.Embedding, k)
	results := make([]result.Result, len(hits))
	for i, h := range hits {
		results[i] = result.New(c.Docs[h.Position], h.Score, i+1)
	}
	return results, nil
}
