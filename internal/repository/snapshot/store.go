// Package snapshot persists a published corpus so uploads survive restarts.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/realitycheck/internal/db"
	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/index"
)

// store is the consumer interface for snapshot persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type document struct {
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url,omitempty"`
	Text   string `json:"text"`
}

type payload struct {
	ID      string      `json:"id"`
	Kind    corpus.Kind `json:"kind"`
	Dim     int         `json:"dim"`
	Docs    []document  `json:"docs"`
	Vectors [][]float32 `json:"vectors"`
}

// Store keeps one snapshot per corpus kind.
type Store struct {
	store store
}

// New creates a snapshot store.
func New(s store) *Store {
	return &Store{store: s}
}

func key(kind corpus.Kind) string {
	return "snapshot:" + string(kind)
}

// Save writes c under its kind, replacing any previous snapshot.
func (s *Store) Save(ctx context.Context, c *index.Corpus) error {
	if c == nil || c.Index == nil {
		return errors.New("nil corpus")
	}
	p := payload{
		ID:      c.ID,
		Kind:    c.Kind,
		Dim:     c.Index.Dim(),
		Docs:    make([]document, len(c.Docs)),
		Vectors: make([][]float32, len(c.Docs)),
	}
	for i, d := range c.Docs {
		p.Docs[i] = document{Title: d.Title(), Source: d.Source(), URL: d.URL(), Text: d.Text()}
		p.Vectors[i] = c.Index.Vector(i)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.store.Set(ctx, key(c.Kind), data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", c.Kind, err)
	}
	return nil
}

// Load rebuilds the corpus of the given kind. A snapshot whose dimension differs
// from dim is rejected so a model change never mixes vector spaces.
func (s *Store) Load(ctx context.Context, kind corpus.Kind, dim int) (*index.Corpus, error) {
	data, err := s.store.Get(ctx, key(kind))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("snapshot %s: %w", kind, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load snapshot %s: %w", kind, err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", kind, err)
	}
	if p.Dim != dim {
		return nil, fmt.Errorf("snapshot %s has dim %d, want %d", kind, p.Dim, dim)
	}

	docs := make([]corpus.Document, len(p.Docs))
	for i, d := range p.Docs {
		if d.Title != "" || d.Source != "" || d.URL != "" {
			docs[i] = corpus.NewArticle(d.Title, d.Source, d.URL, d.Text)
		} else {
			docs[i] = corpus.NewChunk(d.Text)
		}
	}

	c, err := index.NewCorpus(kind, dim, docs, p.Vectors)
	if err != nil {
		return nil, fmt.Errorf("rebuild snapshot %s: %w", kind, err)
	}
	if p.ID != "" {
		c.ID = p.ID
	}
	return c, nil
}
