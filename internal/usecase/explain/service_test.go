package explain

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterLLMMetrics()
	os.Exit(m.Run())
}

type mockGenerator struct {
	out        string
	err        error
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, _ domain.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	return m.out, m.err
}

func testEvidence() []result.Result {
	return []result.Result{
		result.New(corpus.NewArticle("Moon Landing Facts", "NASA", "https://nasa.gov", "Apollo 11 landed in 1969."), 0.91, 1),
		result.New(corpus.NewArticle("Misinformation Study", "MIT", "https://mit.edu", "False news spreads faster."), 0.42, 2),
	}
}

func TestEvidenceBlock(t *testing.T) {
	want := "[1] Moon Landing Facts (Source: NASA)\n    Apollo 11 landed in 1969.\n\n" +
		"[2] Misinformation Study (Source: MIT)\n    False news spreads faster."
	if got := evidenceBlock(testEvidence()); got != want {
		t.Errorf("evidenceBlock =\n%s\nwant\n%s", got, want)
	}
	if got := evidenceBlock(nil); got != "No evidence retrieved." {
		t.Errorf("empty evidenceBlock = %q", got)
	}
}

func TestExplain_JSON(t *testing.T) {
	gen := &mockGenerator{out: `{"detailed_explanation":"It is false.","key_inconsistencies":["date wrong", 3, {"x":1}, " "],"evidence_alignment":"contradicts NASA"}`}
	s := New(gen, Options{MaxTokens: 1024})
	cls := classification.FromFields(map[string]any{"label": "Fake", "confidence": 0.95, "reasoning_summary": "hoax"})

	got, err := s.Explain(context.Background(), "The moon landing was staged.", cls, testEvidence())
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got.Detailed != "It is false." || got.EvidenceAlignment != "contradicts NASA" {
		t.Errorf("unexpected explanation: %+v", got)
	}
	if len(got.KeyInconsistencies) != 2 || got.KeyInconsistencies[0] != "date wrong" || got.KeyInconsistencies[1] != "3" {
		t.Errorf("key inconsistencies = %v", got.KeyInconsistencies)
	}

	for _, want := range []string{
		"News: The moon landing was staged.",
		"Classification: Fake (confidence: 0.95)",
		"Summary: hoax",
		"[1] Moon Landing Facts (Source: NASA)",
	} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestExplain_ProseFallback(t *testing.T) {
	s := New(&mockGenerator{out: "The claim contradicts every source we have."}, Options{})
	got, err := s.Explain(context.Background(), "x", classification.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Detailed != "The claim contradicts every source we have." {
		t.Errorf("Detailed = %q", got.Detailed)
	}
	if got.EvidenceAlignment != DefaultAlignment {
		t.Errorf("EvidenceAlignment = %q", got.EvidenceAlignment)
	}
	if got.KeyInconsistencies == nil || len(got.KeyInconsistencies) != 0 {
		t.Errorf("KeyInconsistencies = %v, want empty", got.KeyInconsistencies)
	}
}

func TestExplain_MissingFieldsGetDefaults(t *testing.T) {
	s := New(&mockGenerator{out: `{"key_inconsistencies":"none"}`}, Options{})
	got, err := s.Explain(context.Background(), "x", classification.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Detailed != DefaultExplanation || got.EvidenceAlignment != DefaultAlignment || len(got.KeyInconsistencies) != 0 {
		t.Errorf("unexpected explanation: %+v", got)
	}

	s = New(&mockGenerator{out: "   "}, Options{})
	got, err = s.Explain(context.Background(), "x", classification.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Detailed != DefaultExplanation {
		t.Errorf("blank output Detailed = %q", got.Detailed)
	}
}

func TestExplain_ProviderErrorPropagates(t *testing.T) {
	s := New(&mockGenerator{err: domain.ErrProviderQuota}, Options{})
	if _, err := s.Explain(context.Background(), "x", classification.Default(), nil); !errors.Is(err, domain.ErrProviderQuota) {
		t.Errorf("expected ErrProviderQuota, got %v", err)
	}
}
