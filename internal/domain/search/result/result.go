package result

import (
	"math"

	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
)

// Result is a single retrieval hit.
type Result struct {
	document corpus.Document
	score    float64
	rank     int
}

// New creates a retrieval result. The score is rounded to 4 decimals.
func New(doc corpus.Document, score float64, rank int) Result {
	return Result{
		document: doc,
		score:    math.Round(score*1e4) / 1e4,
		rank:     rank,
	}
}

// Document returns the matched document.
func (r *Result) Document() corpus.Document { return r.document }

// Score returns the inner-product similarity.
func (r *Result) Score() float64 { return r.score }

// Rank returns the 1-based position in the result list.
func (r *Result) Rank() int { return r.rank }
