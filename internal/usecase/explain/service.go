package explain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	"github.com/kailas-cloud/realitycheck/internal/extract"
	"github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

const pipelineName = "explain"

// Defaults for fields the model did not provide.
const (
	DefaultExplanation = "The system could not generate a detailed explanation at this time."
	DefaultAlignment   = "Evidence alignment could not be determined."
)

// Explanation is the evidence-grounded analysis of a verdict.
type Explanation struct {
	Detailed           string
	KeyInconsistencies []string
	EvidenceAlignment  string
}

// Options tunes the explanation call.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Service explains a verdict against retrieved evidence.
type Service struct {
	gen   Generator
	chain *extract.Chain
	opts  Options
}

// New creates an explanation service.
func New(gen Generator, opts Options) *Service {
	return &Service{gen: gen, chain: extract.ExplanationChain(), opts: opts}
}

// Explain asks the model to relate text, its verdict and the evidence.
// Missing fields get defaults; provider failures propagate.
func (s *Service) Explain(
	ctx context.Context, text string, cls classification.Result, evidence []result.Result,
) (Explanation, error) {
	raw, err := s.gen.Generate(ctx, buildPrompt(text, cls, evidence), domain.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return Explanation{}, fmt.Errorf("explain: %w", err)
	}

	res, ok := s.chain.Extract(raw)
	if !ok {
		metrics.LLMExtractionTotal.WithLabelValues(pipelineName, "none").Inc()
		logger.FromContext(ctx).Warn("Explanation output empty, using defaults")
		return Explanation{
			Detailed:           DefaultExplanation,
			KeyInconsistencies: []string{},
			EvidenceAlignment:  DefaultAlignment,
		}, nil
	}
	metrics.LLMExtractionTotal.WithLabelValues(pipelineName, res.Strategy).Inc()
	if res.Strategy == "explanation_fields" {
		logger.FromContext(ctx).Warn("Explanation output is not JSON, recovered from prose",
			zap.String("raw", corpus.Truncate(raw, 200)),
		)
	}

	return fromFields(res.Fields), nil
}

func fromFields(fields map[string]any) Explanation {
	return Explanation{
		Detailed:           stringOr(fields["detailed_explanation"], DefaultExplanation),
		KeyInconsistencies: stringList(fields["key_inconsistencies"]),
		EvidenceAlignment:  stringOr(fields["evidence_alignment"], DefaultAlignment),
	}
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return def
}

// stringList keeps non-blank strings and renders numbers; other items are dropped.
func stringList(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		switch x := item.(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}
