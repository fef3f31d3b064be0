// Package generation defines structured study-material modes, their output
// schemas and the field-by-field validation applied to model output.
package generation

import "fmt"

// Mode selects the output schema.
type Mode string

// Supported modes.
const (
	ModeSummary    Mode = "summary"
	ModeKeyPoints  Mode = "keypoints"
	ModeFlashcards Mode = "flashcards"
	ModeMCQ        Mode = "mcq"
	ModeViva       Mode = "viva"
	ModeConceptMap Mode = "concept_map"
)

// Modes lists every supported mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeSummary, ModeKeyPoints, ModeFlashcards, ModeMCQ, ModeViva, ModeConceptMap}
}

// IsValid checks if the mode is supported.
func (m Mode) IsValid() bool {
	_, ok := schemas[m]
	return ok
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unsupported generation mode %q", s)
	}
	return m, nil
}

// Schema returns the JSON sample shown to the model for this mode.
func (m Mode) Schema() string { return schemas[m] }

var schemas = map[Mode]string{
	ModeSummary: `{
  "summary": "executive summary",
  "evidence_chunk_ids": [1,2,3]
}`,
	ModeKeyPoints: `{
  "key_concepts": [
    {"concept":"...", "explanation":"...", "evidence_chunk_ids":[1]}
  ]
}`,
	ModeFlashcards: `{
  "flashcards": [
    {"question":"...", "answer":"...", "evidence_chunk_ids":[1]}
  ]
}`,
	ModeMCQ: `{
  "mcqs": [
    {
      "question":"...",
      "options":{"A":"...","B":"...","C":"...","D":"..."},
      "correct":"A",
      "explanation":"...",
      "evidence_chunk_ids":[1]
    }
  ]
}`,
	ModeViva: `{
  "viva_questions": [
    {"question":"...", "model_answer":"...", "difficulty":"medium", "evidence_chunk_ids":[1]}
  ]
}`,
	ModeConceptMap: `{
  "concept_relationships": [
    {
      "concept_a":"...",
      "relation":"...",
      "concept_b":"...",
      "explanation":"...",
      "evidence_chunk_ids":[1,2]
    }
  ]
}`,
}
