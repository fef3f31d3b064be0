package ask

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/answer"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/generation"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	"github.com/kailas-cloud/realitycheck/internal/domain/vector"
	"github.com/kailas-cloud/realitycheck/internal/extract"
	"github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
	"github.com/kailas-cloud/realitycheck/internal/usecase/retrieve"
)

const (
	pipelineName = "ask"

	maxAnswerLen      = 2200
	maxExplanationLen = 1800
	maxSimilarityText = 1800
	fallbackSources   = 3
)

// Options tunes retrieval and the answer call.
type Options struct {
	TopK            int
	MaxContextChars int
	MaxTokens       int
	Temperature     float32
	Score           ScoreParams
}

// Service answers questions strictly from the uploaded notes.
type Service struct {
	corpus CorpusReader
	embed  Embedder
	gen    Generator
	chain  *extract.Chain
	opts   Options
}

// New creates a grounded question-answering service.
// A zero Options.Score falls back to DefaultScoreParams.
func New(corpus CorpusReader, embed Embedder, gen Generator, opts Options) *Service {
	if opts.Score == (ScoreParams{}) {
		opts.Score = DefaultScoreParams()
	}
	return &Service{corpus: corpus, embed: embed, gen: gen, chain: extract.JSONChain(), opts: opts}
}

// Ask answers question from the notes corpus. The corpus is loaded once so that
// cited ids, previews and scores all refer to the same upload.
func (s *Service) Ask(ctx context.Context, question string) (answer.Grounded, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return answer.Grounded{}, fmt.Errorf("question is empty: %w", domain.ErrInvalidInput)
	}

	// Before any upload Load returns nil, which reads as an empty corpus.
	c := s.corpus.Load()
	if c.Len() == 0 {
		return answer.Insufficient(answer.NoSourcesExplanation), nil
	}

	hits, err := retrieve.Search(ctx, s.embed, c, question, s.opts.TopK)
	if err != nil {
		return answer.Grounded{}, fmt.Errorf("ask: %w", err)
	}
	if len(hits) == 0 {
		return answer.Insufficient(answer.NoSourcesExplanation), nil
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(contextBlock(hits, s.opts.MaxContextChars), question), domain.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return answer.Grounded{}, fmt.Errorf("ask: %w", err)
	}

	var fields map[string]any
	if res, ok := s.chain.Extract(raw); ok {
		metrics.LLMExtractionTotal.WithLabelValues(pipelineName, res.Strategy).Inc()
		fields = res.Fields
	} else {
		metrics.LLMExtractionTotal.WithLabelValues(pipelineName, "none").Inc()
		logger.FromContext(ctx).Warn("Answer output not parsable",
			zap.String("raw", corpus.Truncate(raw, 200)),
		)
	}

	text := strings.TrimSpace(stringField(fields, "answer"))
	if truthy(fields["insufficient"]) || text == "" {
		return answer.Insufficient(answer.UnsafeExplanation), nil
	}

	cited := filterCited(hits, generation.CoerceIDs(fields["used_chunk_ids"], c.Len()))
	confidence, err := s.confidence(ctx, text, cited)
	if err != nil {
		return answer.Grounded{}, fmt.Errorf("ask: confidence: %w", err)
	}

	explanation := corpus.Truncate(strings.TrimSpace(stringField(fields, "explanation_simple")), maxExplanationLen)
	if explanation == "" {
		explanation = answer.DefaultExplanation
	}

	sources := make([]answer.Source, len(cited))
	for i := range cited {
		d := cited[i].Document()
		sources[i] = answer.Source{ChunkID: d.ID(), Preview: d.Preview(), Score: cited[i].Score()}
	}

	return answer.Grounded{
		Answer:      corpus.Truncate(text, maxAnswerLen),
		Explanation: explanation,
		Sources:     sources,
		Confidence:  confidence,
	}, nil
}

// confidence embeds the answer and each cited source and scores the best match.
func (s *Service) confidence(ctx context.Context, text string, cited []result.Result) (int, error) {
	if len(cited) == 0 {
		return 0, nil
	}
	ans, err := s.embed.Embed(ctx, corpus.Truncate(text, maxSimilarityText))
	if err != nil {
		return 0, err
	}

	scores := make([]float64, len(cited))
	maxSim := 0.0
	for i := range cited {
		scores[i] = cited[i].Score()
		src, err := s.embed.Embed(ctx, corpus.Truncate(cited[i].Document().Text(), maxSimilarityText))
		if err != nil {
			return 0, err
		}
		maxSim = max(maxSim, vector.Cosine(ans.Embedding, src.Embedding))
	}
	return s.opts.Score.Score(scores, maxSim), nil
}

// filterCited keeps the hits the model cited, in retrieval order. Without any
// valid citation the top hits stand in.
func filterCited(hits []result.Result, ids []int) []result.Result {
	if len(ids) == 0 {
		return hits[:min(fallbackSources, len(hits))]
	}
	out := make([]result.Result, 0, len(ids))
	for i := range hits {
		if slices.Contains(ids, hits[i].Document().ID()) {
			out = append(out, hits[i])
		}
	}
	return out
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}
