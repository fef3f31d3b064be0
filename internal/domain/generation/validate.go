package generation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidShape signals model output that does not match the mode's schema.
var ErrInvalidShape = errors.New("invalid output shape")

var validCorrect = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// Validate converts extracted model fields into a typed Output.
// Required top-level fields missing or of the wrong type yield ErrInvalidShape.
// List items that are not objects are dropped. Every citation list is coerced
// against maxID.
func Validate(mode Mode, fields map[string]any, maxID int) (Output, error) {
	out := Output{Mode: mode}
	switch mode {
	case ModeSummary:
		text := strings.TrimSpace(stringField(fields, "summary"))
		if text == "" {
			return Output{}, fmt.Errorf("%w: summary is empty", ErrInvalidShape)
		}
		out.Summary = &Summary{
			Text:             truncateRunes(text, MaxSummaryLen),
			EvidenceChunkIDs: CoerceIDs(fields["evidence_chunk_ids"], maxID),
		}
	case ModeKeyPoints:
		items, err := objectList(fields, "key_concepts")
		if err != nil {
			return Output{}, err
		}
		out.KeyConcepts = make([]KeyConcept, 0, len(items))
		for _, it := range items {
			out.KeyConcepts = append(out.KeyConcepts, KeyConcept{
				Concept:          stringField(it, "concept"),
				Explanation:      stringField(it, "explanation"),
				EvidenceChunkIDs: CoerceIDs(it["evidence_chunk_ids"], maxID),
			})
		}
	case ModeFlashcards:
		items, err := objectList(fields, "flashcards")
		if err != nil {
			return Output{}, err
		}
		out.Flashcards = make([]Flashcard, 0, len(items))
		for _, it := range items {
			out.Flashcards = append(out.Flashcards, Flashcard{
				Question:         stringField(it, "question"),
				Answer:           stringField(it, "answer"),
				EvidenceChunkIDs: CoerceIDs(it["evidence_chunk_ids"], maxID),
			})
		}
	case ModeMCQ:
		items, err := objectList(fields, "mcqs")
		if err != nil {
			return Output{}, err
		}
		out.MCQs = make([]MCQ, 0, len(items))
		for _, it := range items {
			correct := strings.ToUpper(strings.TrimSpace(stringField(it, "correct")))
			if !validCorrect[correct] {
				correct = "A"
			}
			out.MCQs = append(out.MCQs, MCQ{
				Question:         stringField(it, "question"),
				Options:          options(it["options"]),
				Correct:          correct,
				Explanation:      stringField(it, "explanation"),
				EvidenceChunkIDs: CoerceIDs(it["evidence_chunk_ids"], maxID),
			})
		}
	case ModeViva:
		items, err := objectList(fields, "viva_questions")
		if err != nil {
			return Output{}, err
		}
		out.VivaQuestions = make([]VivaQuestion, 0, len(items))
		for _, it := range items {
			out.VivaQuestions = append(out.VivaQuestions, VivaQuestion{
				Question:         stringField(it, "question"),
				ModelAnswer:      stringField(it, "model_answer"),
				Difficulty:       stringField(it, "difficulty"),
				EvidenceChunkIDs: CoerceIDs(it["evidence_chunk_ids"], maxID),
			})
		}
	case ModeConceptMap:
		items, err := objectList(fields, "concept_relationships")
		if err != nil {
			return Output{}, err
		}
		out.ConceptRelationships = make([]Relationship, 0, len(items))
		for _, it := range items {
			out.ConceptRelationships = append(out.ConceptRelationships, Relationship{
				ConceptA:         stringField(it, "concept_a"),
				Relation:         stringField(it, "relation"),
				ConceptB:         stringField(it, "concept_b"),
				Explanation:      stringField(it, "explanation"),
				EvidenceChunkIDs: CoerceIDs(it["evidence_chunk_ids"], maxID),
			})
		}
	default:
		return Output{}, fmt.Errorf("unsupported generation mode %q", mode)
	}
	return out, nil
}

// CoerceIDs normalizes a citation list: integers (or integer strings) in [1, maxID],
// duplicates dropped, first-seen order preserved. Anything that is not a list yields
// an empty slice.
func CoerceIDs(v any, maxID int) []int {
	out := []int{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	seen := make(map[int]bool, len(list))
	for _, raw := range list {
		id, ok := toInt(raw)
		if !ok || id < 1 || id > maxID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int(x), true
	case int:
		return x, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func objectList(fields map[string]any, key string) ([]map[string]any, error) {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrInvalidShape, key)
	}
	items := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

func stringField(m map[string]any, key string) string {
	switch x := m[key].(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func options(v any) map[string]string {
	out := make(map[string]string, 4)
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, val := range m {
		key := strings.ToUpper(strings.TrimSpace(k))
		if !validCorrect[key] {
			continue
		}
		out[key] = stringField(map[string]any{"v": val}, "v")
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
