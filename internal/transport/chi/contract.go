package chi

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain/answer"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/generation"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	domusage "github.com/kailas-cloud/realitycheck/internal/domain/usage"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
	analyzeuc "github.com/kailas-cloud/realitycheck/internal/usecase/analyze"
	corpusuc "github.com/kailas-cloud/realitycheck/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/realitycheck/internal/usecase/health"
)

// Analyzer fact-checks news text or an image of news.
type Analyzer interface {
	Analyze(ctx context.Context, in analyzeuc.Input) (analyzeuc.Report, error)
}

// Classifier labels news text.
type Classifier interface {
	Classify(ctx context.Context, text string) (classification.Result, error)
}

// Retriever searches the evidence corpus.
type Retriever interface {
	Retrieve(ctx context.Context, text string, k int) ([]result.Result, error)
}

// NotesUploader replaces the notes corpus with an uploaded document.
type NotesUploader interface {
	Upload(ctx context.Context, f ingest.File) (corpusuc.Summary, error)
}

// Asker answers questions from the notes.
type Asker interface {
	Ask(ctx context.Context, question string) (answer.Grounded, error)
}

// StudyGenerator produces structured study material from the notes.
type StudyGenerator interface {
	Generate(ctx context.Context, mode string) (generation.Output, error)
}

// UsageReporter builds embedding usage reports.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
