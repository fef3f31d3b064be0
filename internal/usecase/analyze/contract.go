package analyze

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
	"github.com/kailas-cloud/realitycheck/internal/usecase/explain"
)

// Classifier labels news text.
type Classifier interface {
	Classify(ctx context.Context, text string) (classification.Result, error)
}

// Retriever finds related evidence.
type Retriever interface {
	Retrieve(ctx context.Context, text string, k int) ([]result.Result, error)
}

// Explainer relates the verdict to the evidence.
type Explainer interface {
	Explain(ctx context.Context, text string, cls classification.Result, evidence []result.Result) (explain.Explanation, error)
}

// ImageReader runs OCR on an uploaded image.
type ImageReader interface {
	Recognize(ctx context.Context, f ingest.File) (ingest.OCRResult, error)
}
