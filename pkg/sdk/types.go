package realitycheck

import (
	"encoding/json"
	"time"
)

// Label is the fact-check verdict.
type Label string

// Labels.
const (
	LabelReal       Label = "Real"
	LabelFake       Label = "Fake"
	LabelMisleading Label = "Misleading"
)

// Mode selects the kind of study material Generate produces.
type Mode string

// Modes.
const (
	ModeSummary    Mode = "summary"
	ModeKeyPoints  Mode = "keypoints"
	ModeFlashcards Mode = "flashcards"
	ModeMCQ        Mode = "mcq"
	ModeViva       Mode = "viva"
	ModeConceptMap Mode = "concept_map"
)

// Classification is a verdict with its confidence in [0,1].
type Classification struct {
	Label            Label   `json:"label"`
	Confidence       float64 `json:"confidence"`
	ReasoningSummary string  `json:"reasoning_summary"`
}

// Article is an evidence article returned by retrieval.
type Article struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Source          string  `json:"source"`
	URL             string  `json:"url"`
	SimilarityScore float64 `json:"similarity_score"`
	Rank            int     `json:"rank"`
}

// Analysis is the full fact-check of a piece of news.
type Analysis struct {
	Classification
	DetailedExplanation string    `json:"detailed_explanation"`
	KeyInconsistencies  []string  `json:"key_inconsistencies"`
	EvidenceAlignment   string    `json:"evidence_alignment"`
	RetrievedArticles   []Article `json:"retrieved_articles"`
}

// UploadResult describes the notes corpus built from an upload.
type UploadResult struct {
	Status        string `json:"status"`
	CorpusID      string `json:"corpus_id"`
	ChunksCreated int    `json:"chunks_created"`
}

// Source is a notes chunk cited by an answer.
type Source struct {
	ChunkID int    `json:"chunk_id"`
	Preview string `json:"preview"`
}

// Answer is a question answered from the uploaded notes.
// Confidence is an integer in [0,100].
type Answer struct {
	Answer            string   `json:"answer"`
	ExplanationSimple string   `json:"explanation_simple"`
	Sources           []Source `json:"sources"`
	Confidence        int      `json:"confidence"`
	Insufficient      bool     `json:"insufficient"`
}

// Generation is study material for one mode. Data holds the mode's payload
// (for example {"flashcards":[...]}) for the caller to decode.
type Generation struct {
	Mode Mode            `json:"mode"`
	Data json.RawMessage `json:"data"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status  string            `json:"status"`  // "ok" or "degraded"
	Checks  map[string]string `json:"checks"`  // component -> "ok"/"error"
	Entries map[string]int    `json:"entries"` // corpus -> entry count
}

// UsagePeriod is the aggregation window of a usage report.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains embedding token usage for a period.
type UsageReport struct {
	Period        UsagePeriod `json:"period"`
	Provider      string      `json:"provider"`
	PeriodStartAt time.Time   `json:"period_start_at"`
	PeriodEndAt   time.Time   `json:"period_end_at"`
	Usage         struct {
		Tokens int64 `json:"tokens"`
	} `json:"usage"`
	Budget BudgetStatus `json:"budget"`
}

// BudgetStatus tracks token quota state. TokensRemaining is -1 when unlimited.
type BudgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}
