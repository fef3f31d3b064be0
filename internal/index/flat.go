// Package index provides the exact inner-product vector index and the
// index/document pair that is published atomically on rebuild.
package index

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/vector"
)

// Hit is one search match.
type Hit struct {
	Position int
	Score    float64
}

// Flat is an immutable brute-force inner-product index.
// Positions are 0-based insertion order.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Build creates an index over vectors. All vectors must share dim.
// The vectors are copied.
func Build(dim int, vectors [][]float32) (*Flat, error) {
	f := &Flat{dim: dim, vectors: make([][]float32, len(vectors))}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dim %d, want %d: %w", i, len(v), dim, domain.ErrVectorDimMismatch)
		}
		f.vectors[i] = append([]float32(nil), v...)
	}
	return f, nil
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	if f == nil {
		return 0
	}
	return len(f.vectors)
}

// Vector returns the stored vector at position.
func (f *Flat) Vector(position int) []float32 { return f.vectors[position] }

// Search returns up to k hits ordered by descending score, ties broken by lower position.
// k is clamped to Len. An empty index or k <= 0 yields an empty slice.
func (f *Flat) Search(q []float32, k int) []Hit {
	n := f.Len()
	if n == 0 || k <= 0 {
		return []Hit{}
	}
	k = min(k, n)

	hits := make([]Hit, n)
	for i, v := range f.vectors {
		hits[i] = Hit{Position: i, Score: vector.Dot(q, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	return hits[:k]
}
