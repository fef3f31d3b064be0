package analyze

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
	"github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/usecase/explain"
)

// Input is either news text, an image of news, or both.
type Input struct {
	Text  string
	Image *ingest.File
}

// Report is the full fact-check of one piece of news.
type Report struct {
	Classification classification.Result
	Explanation    explain.Explanation
	Articles       []result.Result
}

// Options tunes the pipeline.
type Options struct {
	TopK          int
	MaxInputChars int
}

// Service runs classify → retrieve → explain.
type Service struct {
	classifier Classifier
	retriever  Retriever
	explainer  Explainer
	images     ImageReader
	opts       Options
}

// New creates an analysis service. images may be nil when image input is not accepted.
func New(c Classifier, r Retriever, e Explainer, images ImageReader, opts Options) *Service {
	return &Service{classifier: c, retriever: r, explainer: e, images: images, opts: opts}
}

// Analyze fact-checks the input. Text recognized from an image wins over the
// provided text; provided text is the fallback when OCR is unavailable.
func (s *Service) Analyze(ctx context.Context, in Input) (Report, error) {
	text, err := s.resolveText(ctx, in)
	if err != nil {
		return Report{}, err
	}
	if s.opts.MaxInputChars > 0 {
		text = corpus.Truncate(text, s.opts.MaxInputChars)
	}

	cls, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return Report{}, fmt.Errorf("classify: %w", err)
	}

	articles, err := s.retriever.Retrieve(ctx, text, s.opts.TopK)
	if err != nil {
		return Report{}, fmt.Errorf("retrieve evidence: %w", err)
	}

	expl, err := s.explainer.Explain(ctx, text, cls, articles)
	if err != nil {
		return Report{}, fmt.Errorf("explain: %w", err)
	}

	logger.FromContext(ctx).Info("Analysis completed",
		zap.String("label", string(cls.Label())),
		zap.Float64("confidence", cls.Confidence()),
		zap.Int("articles", len(articles)),
	)

	return Report{Classification: cls, Explanation: expl, Articles: articles}, nil
}

func (s *Service) resolveText(ctx context.Context, in Input) (string, error) {
	provided := strings.TrimSpace(in.Text)

	if in.Image != nil {
		if s.images == nil {
			return "", fmt.Errorf("image input is not accepted: %w", domain.ErrInvalidInput)
		}
		res, err := s.images.Recognize(ctx, *in.Image)
		if err != nil {
			return "", fmt.Errorf("read image: %w", err)
		}
		if text, ok := res.Text(); ok && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		if provided == "" {
			return "", fmt.Errorf("could not extract text from image (%s) and no text provided: %w",
				res.Reason(), domain.ErrInvalidInput)
		}
		logger.FromContext(ctx).Warn("OCR produced no text, using provided text",
			zap.String("reason", res.Reason()),
		)
	}

	if provided == "" {
		return "", fmt.Errorf("provide either text or an image: %w", domain.ErrInvalidInput)
	}
	return provided, nil
}
