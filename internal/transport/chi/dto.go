package chi

import (
	"time"

	"github.com/kailas-cloud/realitycheck/internal/domain/answer"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	domusage "github.com/kailas-cloud/realitycheck/internal/domain/usage"
	analyzeuc "github.com/kailas-cloud/realitycheck/internal/usecase/analyze"
	healthuc "github.com/kailas-cloud/realitycheck/internal/usecase/health"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodePayloadTooLarge      = "payload_too_large"
	CodeValidationFailed     = "validation_failed"
	CodeUnsupportedDocument  = "unsupported_document"
	CodeUnreadableDocument   = "unreadable_document"
	CodeNoCorpus             = "no_corpus"
	CodeQuotaExceeded        = "quota_exceeded"
	CodeProviderError        = "provider_error"
	CodeMalformedResponse    = "malformed_provider_response"
	CodeMalformedModelOutput = "malformed_model_output"
	CodeProviderTimeout      = "provider_timeout"
	CodeInternalError        = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type textRequest struct {
	Text string `json:"text"`
}

type retrieveRequest struct {
	Text string `json:"text"`
	K    *int   `json:"k,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type generateRequest struct {
	Mode string `json:"mode"`
}

type classificationResponse struct {
	Label            string  `json:"label"`
	Confidence       float64 `json:"confidence"`
	ReasoningSummary string  `json:"reasoning_summary"`
}

type articleResponse struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Source          string  `json:"source"`
	URL             string  `json:"url"`
	SimilarityScore float64 `json:"similarity_score"`
	Rank            int     `json:"rank"`
}

type analyzeResponse struct {
	classificationResponse
	DetailedExplanation string            `json:"detailed_explanation"`
	KeyInconsistencies  []string          `json:"key_inconsistencies"`
	EvidenceAlignment   string            `json:"evidence_alignment"`
	RetrievedArticles   []articleResponse `json:"retrieved_articles"`
}

type retrieveResponse struct {
	Results []articleResponse `json:"results"`
}

type uploadResponse struct {
	Status        string `json:"status"`
	CorpusID      string `json:"corpus_id"`
	ChunksCreated int    `json:"chunks_created"`
}

type sourceResponse struct {
	ChunkID int    `json:"chunk_id"`
	Preview string `json:"preview"`
}

type askResponse struct {
	Answer            string           `json:"answer"`
	ExplanationSimple string           `json:"explanation_simple"`
	Sources           []sourceResponse `json:"sources"`
	Confidence        int              `json:"confidence"`
	Insufficient      bool             `json:"insufficient"`
}

type generateResponse struct {
	Mode string         `json:"mode"`
	Data map[string]any `json:"data"`
}

type usageTotals struct {
	Tokens int64 `json:"tokens"`
}

type budgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

type usageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Usage         usageTotals  `json:"usage"`
	Budget        budgetStatus `json:"budget"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Entries map[string]int    `json:"entries"`
}

func classificationToResponse(c classification.Result) classificationResponse {
	return classificationResponse{
		Label:            string(c.Label()),
		Confidence:       c.Confidence(),
		ReasoningSummary: c.Reasoning(),
	}
}

func articlesToResponse(rs []result.Result) []articleResponse {
	out := make([]articleResponse, len(rs))
	for i := range rs {
		d := rs[i].Document()
		out[i] = articleResponse{
			ID:              d.ID(),
			Title:           d.Title(),
			Source:          d.Source(),
			URL:             d.URL(),
			SimilarityScore: rs[i].Score(),
			Rank:            rs[i].Rank(),
		}
	}
	return out
}

func reportToResponse(r analyzeuc.Report) analyzeResponse {
	inconsistencies := r.Explanation.KeyInconsistencies
	if inconsistencies == nil {
		inconsistencies = []string{}
	}
	return analyzeResponse{
		classificationResponse: classificationToResponse(r.Classification),
		DetailedExplanation:    r.Explanation.Detailed,
		KeyInconsistencies:     inconsistencies,
		EvidenceAlignment:      r.Explanation.EvidenceAlignment,
		RetrievedArticles:      articlesToResponse(r.Articles),
	}
}

func answerToResponse(a answer.Grounded) askResponse {
	sources := make([]sourceResponse, len(a.Sources))
	for i, s := range a.Sources {
		sources[i] = sourceResponse{ChunkID: s.ChunkID, Preview: s.Preview}
	}
	return askResponse{
		Answer:            a.Answer,
		ExplanationSimple: a.Explanation,
		Sources:           sources,
		Confidence:        a.Confidence,
		Insufficient:      a.Insufficient,
	}
}

func usageToResponse(r domusage.Report) usageResponse {
	b := r.Budget()
	return usageResponse{
		Period:        string(r.Period()),
		Provider:      r.Provider(),
		PeriodStartAt: r.PeriodStart(),
		PeriodEndAt:   r.PeriodEnd(),
		Usage:         usageTotals{Tokens: r.TokensUsed()},
		Budget: budgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        b.ResetsAt(),
		},
	}
}

func healthToResponse(r healthuc.Report) healthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return healthResponse{Status: string(r.Status), Checks: checks, Entries: r.Entries}
}
