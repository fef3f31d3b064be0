package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/generation"
	"github.com/kailas-cloud/realitycheck/internal/extract"
	"github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

const pipelineName = "generate"

// Options tunes the generation call.
type Options struct {
	MaxContextChars int
	MaxTokens       int
	Temperature     float32
}

// Service produces study material from the uploaded notes.
type Service struct {
	corpus CorpusReader
	gen    Generator
	chain  *extract.Chain
	opts   Options
}

// New creates a structured generation service.
func New(corpus CorpusReader, gen Generator, opts Options) *Service {
	return &Service{corpus: corpus, gen: gen, chain: extract.JSONChain(), opts: opts}
}

// Generate renders mode over the whole notes corpus and validates the model output.
// Unlike classification there is no safe default: unextractable output is
// ErrMalformedModelOutput.
func (s *Service) Generate(ctx context.Context, mode string) (generation.Output, error) {
	m, err := generation.ParseMode(strings.TrimSpace(mode))
	if err != nil {
		return generation.Output{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	c := s.corpus.Load()
	if c.Len() == 0 {
		return generation.Output{}, domain.ErrNoCorpus
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(m, fullContext(c.Docs, s.opts.MaxContextChars)), domain.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return generation.Output{}, fmt.Errorf("generate %s: %w", m, err)
	}

	res, ok := s.chain.Extract(raw)
	if !ok {
		metrics.LLMExtractionTotal.WithLabelValues(pipelineName, "none").Inc()
		logger.FromContext(ctx).Warn("Generation output not parsable",
			zap.String("mode", string(m)),
			zap.String("raw", corpus.Truncate(raw, 200)),
		)
		return generation.Output{}, fmt.Errorf("generate %s: model did not return valid JSON: %w", m, domain.ErrMalformedModelOutput)
	}
	metrics.LLMExtractionTotal.WithLabelValues(pipelineName, res.Strategy).Inc()

	out, err := generation.Validate(m, res.Fields, c.Len())
	if err != nil {
		if errors.Is(err, generation.ErrInvalidShape) {
			return generation.Output{}, fmt.Errorf("generate %s: %w: %w", m, domain.ErrMalformedModelOutput, err)
		}
		return generation.Output{}, fmt.Errorf("generate %s: %w", m, err)
	}
	return out, nil
}
