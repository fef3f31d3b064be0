package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
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

// --- Mocks ---

type mockAnalyzer struct {
	report analyzeuc.Report
	err    error
	got    analyzeuc.Input
}

func (m *mockAnalyzer) Analyze(ctx context.Context, in analyzeuc.Input) (analyzeuc.Report, error) {
	m.got = in
	domain.UsageFromContext(ctx).AddEmbedding(12)
	domain.UsageFromContext(ctx).AddModelCall()
	return m.report, m.err
}

type mockClassifier struct {
	res classification.Result
	err error
}

func (m *mockClassifier) Classify(ctx context.Context, _ string) (classification.Result, error) {
	domain.UsageFromContext(ctx).AddModelCall()
	return m.res, m.err
}

type mockRetriever struct {
	results []result.Result
	err     error
	gotK    int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, k int) ([]result.Result, error) {
	m.gotK = k
	return m.results, m.err
}

type mockUploader struct {
	sum corpusuc.Summary
	err error
	got ingest.File
}

func (m *mockUploader) Upload(_ context.Context, f ingest.File) (corpusuc.Summary, error) {
	m.got = f
	return m.sum, m.err
}

type mockAsker struct {
	ans answer.Grounded
	err error
}

func (m *mockAsker) Ask(_ context.Context, _ string) (answer.Grounded, error) { return m.ans, m.err }

type mockStudyGenerator struct {
	out generation.Output
	err error
}

func (m *mockStudyGenerator) Generate(_ context.Context, _ string) (generation.Output, error) {
	return m.out, m.err
}

type mockUsage struct{ report domusage.Report }

func (m *mockUsage) GetReport(_ context.Context, _ domusage.Period) domusage.Report { return m.report }

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type mocks struct {
	analyze  *mockAnalyzer
	classify *mockClassifier
	retrieve *mockRetriever
	notes    *mockUploader
	ask      *mockAsker
	generate *mockStudyGenerator
	usage    *mockUsage
	health   *mockHealth
}

func newTestRouter(t *testing.T, opts Options) (http.Handler, *mocks) {
	t.Helper()
	m := &mocks{
		analyze:  &mockAnalyzer{},
		classify: &mockClassifier{res: classification.Default()},
		retrieve: &mockRetriever{},
		notes:    &mockUploader{},
		ask:      &mockAsker{},
		generate: &mockStudyGenerator{},
		usage:    &mockUsage{},
		health:   &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	srv := NewServer(Services{
		Analyze:  m.analyze,
		Classify: m.classify,
		Retrieve: m.retrieve,
		Notes:    m.notes,
		Ask:      m.ask,
		Generate: m.generate,
		Usage:    m.usage,
		Health:   m.health,
	}, opts, zap.NewNop())

	r := chi.NewRouter()
	srv.Routes(r)
	return r, m
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
