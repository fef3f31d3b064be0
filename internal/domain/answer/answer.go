// Package answer holds the grounded question-answering result.
package answer

// Fixed responses for questions the uploaded material cannot support.
const (
	InsufficientAnswer = "Insufficient information in uploaded material."

	// NoSourcesExplanation is used when retrieval found nothing.
	NoSourcesExplanation = "The notes do not contain enough information to answer this question."
	// UnsafeExplanation is used when the model flagged insufficiency or answered empty.
	UnsafeExplanation = "The uploaded notes do not provide enough detail to answer this question safely."

	// DefaultExplanation fills an empty simplified explanation.
	DefaultExplanation = "This answer is based on the cited chunks."
)

// Source is a cited chunk.
type Source struct {
	ChunkID int
	Preview string
	Score   float64
}

// Grounded is the answer to a question over the uploaded notes.
type Grounded struct {
	Answer       string
	Explanation  string
	Sources      []Source
	Confidence   int
	Insufficient bool
}

// Insufficient returns the fixed "not enough information" answer with confidence 0.
func Insufficient(explanation string) Grounded {
	return Grounded{
		Answer:       InsufficientAnswer,
		Explanation:  explanation,
		Sources:      []Source{},
		Confidence:   0,
		Insufficient: true,
	}
}
