package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/extract"
	"github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

const pipelineName = "classify"

// Options tunes the classification call.
type Options struct {
	MaxInputChars int
	MaxTokens     int
	Temperature   float32
}

// Service labels news text as Real, Fake or Misleading.
type Service struct {
	gen   Generator
	chain *extract.Chain
	opts  Options
}

// New creates a classification service.
func New(gen Generator, opts Options) *Service {
	return &Service{gen: gen, chain: extract.ClassificationChain(), opts: opts}
}

// Classify returns a verdict for text. Unparsable model output is not an error:
// it yields Misleading with confidence 0.5. Provider failures propagate.
func (s *Service) Classify(ctx context.Context, text string) (classification.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return classification.Result{}, fmt.Errorf("news text is empty: %w", domain.ErrInvalidInput)
	}
	if s.opts.MaxInputChars > 0 {
		text = corpus.Truncate(text, s.opts.MaxInputChars)
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(text), domain.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return classification.Result{}, fmt.Errorf("classify: %w", err)
	}

	res, ok := s.chain.Extract(raw)
	if !ok {
		metrics.LLMExtractionTotal.WithLabelValues(pipelineName, "none").Inc()
		logger.FromContext(ctx).Warn("Classification output not parsable, using defaults",
			zap.String("raw", corpus.Truncate(raw, 200)),
		)
		return classification.Default(), nil
	}
	metrics.LLMExtractionTotal.WithLabelValues(pipelineName, res.Strategy).Inc()

	return classification.FromFields(res.Fields), nil
}
