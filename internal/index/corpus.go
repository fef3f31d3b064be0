package index

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
)

// Corpus pairs an index with its documents. Position i in the index maps to Docs[i].
// A Corpus is never mutated after construction.
type Corpus struct {
	ID    string
	Kind  corpus.Kind
	Index *Flat
	Docs  []corpus.Document
}

// NewCorpus builds a corpus, assigning 1-based citation ids in order.
func NewCorpus(kind corpus.Kind, dim int, docs []corpus.Document, vectors [][]float32) (*Corpus, error) {
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("corpus has %d documents but %d vectors", len(docs), len(vectors))
	}
	idx, err := Build(dim, vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	numbered := make([]corpus.Document, len(docs))
	for i, d := range docs {
		numbered[i] = d.WithID(i + 1)
	}
	return &Corpus{
		ID:    uuid.NewString(),
		Kind:  kind,
		Index: idx,
		Docs:  numbered,
	}, nil
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Docs)
}

// Holder publishes a Corpus to concurrent readers.
// Readers always observe a complete index/document pair.
type Holder struct {
	p atomic.Pointer[Corpus]
}

// NewHolder creates an empty holder.
func NewHolder() *Holder { return &Holder{} }

// Load returns the current corpus, or nil if none was published.
func (h *Holder) Load() *Corpus { return h.p.Load() }

// Swap publishes c and returns the previous corpus.
func (h *Holder) Swap(c *Corpus) *Corpus { return h.p.Swap(c) }
