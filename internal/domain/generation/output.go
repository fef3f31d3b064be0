package generation

// MaxSummaryLen caps the summary text in runes.
const MaxSummaryLen = 2500

// Output is the validated result of one mode. Exactly one payload field is set,
// matching Mode.
type Output struct {
	Mode                 Mode
	Summary              *Summary
	KeyConcepts          []KeyConcept
	Flashcards           []Flashcard
	MCQs                 []MCQ
	VivaQuestions        []VivaQuestion
	ConceptRelationships []Relationship
}

// Summary is an executive summary of the notes.
type Summary struct {
	Text             string `json:"summary"`
	EvidenceChunkIDs []int  `json:"evidence_chunk_ids"`
}

// KeyConcept is one key point.
type KeyConcept struct {
	Concept          string `json:"concept"`
	Explanation      string `json:"explanation"`
	EvidenceChunkIDs []int  `json:"evidence_chunk_ids"`
}

// Flashcard is a question/answer pair.
type Flashcard struct {
	Question         string `json:"question"`
	Answer           string `json:"answer"`
	EvidenceChunkIDs []int  `json:"evidence_chunk_ids"`
}

// MCQ is a multiple-choice question with options keyed A through D.
type MCQ struct {
	Question         string            `json:"question"`
	Options          map[string]string `json:"options"`
	Correct          string            `json:"correct"`
	Explanation      string            `json:"explanation"`
	EvidenceChunkIDs []int             `json:"evidence_chunk_ids"`
}

// VivaQuestion is an oral-exam question with a model answer.
type VivaQuestion struct {
	Question         string `json:"question"`
	ModelAnswer      string `json:"model_answer"`
	Difficulty       string `json:"difficulty"`
	EvidenceChunkIDs []int  `json:"evidence_chunk_ids"`
}

// Relationship is one concept-map edge.
type Relationship struct {
	ConceptA         string `json:"concept_a"`
	Relation         string `json:"relation"`
	ConceptB         string `json:"concept_b"`
	Explanation      string `json:"explanation"`
	EvidenceChunkIDs []int  `json:"evidence_chunk_ids"`
}

// Payload returns the mode-specific payload as a JSON-ready map keyed by the schema's
// top-level fields.
func (o Output) Payload() map[string]any {
	switch o.Mode {
	case ModeSummary:
		if o.Summary == nil {
			return map[string]any{}
		}
		return map[string]any{"summary": o.Summary.Text, "evidence_chunk_ids": o.Summary.EvidenceChunkIDs}
	case ModeKeyPoints:
		return map[string]any{"key_concepts": o.KeyConcepts}
	case ModeFlashcards:
		return map[string]any{"flashcards": o.Flashcards}
	case ModeMCQ:
		return map[string]any{"mcqs": o.MCQs}
	case ModeViva:
		return map[string]any{"viva_questions": o.VivaQuestions}
	case ModeConceptMap:
		return map[string]any{"concept_relationships": o.ConceptRelationships}
	default:
		return map[string]any{}
	}
}
