package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/answer"
	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/generation"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
	domusage "github.com/kailas-cloud/realitycheck/internal/domain/usage"
	analyzeuc "github.com/kailas-cloud/realitycheck/internal/usecase/analyze"
	corpusuc "github.com/kailas-cloud/realitycheck/internal/usecase/corpus"
	"github.com/kailas-cloud/realitycheck/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/realitycheck/internal/usecase/health"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileName string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func testArticles() []result.Result {
	return []result.Result{
		result.New(corpus.NewArticle("Vaccines", "WHO", "https://who.int", "text").WithID(3), 0.81234, 1),
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("news text is empty: %w", domain.ErrInvalidInput), http.StatusBadRequest, CodeValidationFailed},
		{domain.ErrUnsupportedDocument, http.StatusBadRequest, CodeUnsupportedDocument},
		{domain.ErrNoCorpus, http.StatusConflict, CodeNoCorpus},
		{domain.ErrUnreadableDocument, http.StatusUnprocessableEntity, CodeUnreadableDocument},
		{domain.NewProviderStatusError("llm", 429, "slow down"), http.StatusTooManyRequests, CodeQuotaExceeded},
		{fmt.Errorf("classify: %w", domain.ErrTransport), http.StatusGatewayTimeout, CodeProviderTimeout},
		{domain.NewProviderStatusError("llm", 500, "secret upstream detail"), http.StatusBadGateway, CodeProviderError},
		{domain.ErrMalformedResponse, http.StatusBadGateway, CodeMalformedResponse},
		{domain.ErrMalformedModelOutput, http.StatusBadGateway, CodeMalformedModelOutput},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			h, m := newTestRouter(t, Options{})
			m.classify.err = tc.err

			rr := do(h, jsonRequest(http.MethodPost, "/v1/classify", `{"text":"news"}`))
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			e := decodeError(t, rr)
			if e.Code != tc.code {
				t.Errorf("code = %q, want %q", e.Code, tc.code)
			}
			if strings.Contains(e.Message, "secret upstream detail") || strings.Contains(e.Message, "boom") {
				t.Errorf("upstream detail leaked: %q", e.Message)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	m.classify.res = classification.FromFields(map[string]any{
		"label": "fake", "confidence": 0.876, "reasoning_summary": "No source.",
	})

	rr := do(h, jsonRequest(http.MethodPost, "/v1/classify", `{"text":"Aliens landed"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var got classificationResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Label != "Fake" || got.Confidence != 0.88 || got.ReasoningSummary != "No source." {
		t.Errorf("unexpected body: %+v", got)
	}
	if rr.Header().Get("X-Model-Calls") != "1" {
		t.Errorf("X-Model-Calls = %q", rr.Header().Get("X-Model-Calls"))
	}
}

func TestClassify_BadBody(t *testing.T) {
	h, _ := newTestRouter(t, Options{})
	rr := do(h, jsonRequest(http.MethodPost, "/v1/classify", `{"text":`))
	if rr.Code != http.StatusBadRequest || decodeError(t, rr).Code != CodeBadRequest {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestAnalyze_JSON(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	m.analyze.report = analyzeuc.Report{
		Classification: classification.Default(),
		Explanation: explain.Explanation{
			Detailed:          "Details.",
			EvidenceAlignment: "Partially aligned.",
		},
		Articles: testArticles(),
	}

	rr := do(h, jsonRequest(http.MethodPost, "/v1/analyze", `{"text":"Vaccines cause X"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	if m.analyze.got.Text != "Vaccines cause X" || m.analyze.got.Image != nil {
		t.Errorf("input = %+v", m.analyze.got)
	}

	var got analyzeResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Label != "Misleading" || got.DetailedExplanation != "Details." || got.KeyInconsistencies == nil {
		t.Errorf("unexpected body: %+v", got)
	}
	if len(got.RetrievedArticles) != 1 {
		t.Fatalf("articles = %+v", got.RetrievedArticles)
	}
	a := got.RetrievedArticles[0]
	if a.ID != 3 || a.Title != "Vaccines" || a.URL != "https://who.int" || a.SimilarityScore != 0.8123 || a.Rank != 1 {
		t.Errorf("article = %+v", a)
	}
	if rr.Header().Get("X-Embedding-Tokens") != "12" || rr.Header().Get("X-Embedding-Calls") != "1" {
		t.Errorf("usage headers = %v", rr.Header())
	}
}

func TestAnalyze_MultipartImage(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	req := multipartRequest(t, "/v1/analyze", map[string]string{"text": "fallback"}, "shot.png", []byte("PNG"))

	rr := do(h, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	in := m.analyze.got
	if in.Text != "fallback" || in.Image == nil {
		t.Fatalf("input = %+v", in)
	}
	if in.Image.Name != "shot.png" || string(in.Image.Data) != "PNG" {
		t.Errorf("image = %+v", in.Image)
	}
}

func TestRetrieve(t *testing.T) {
	h, m := newTestRouter(t, Options{DefaultK: 4})
	m.retrieve.results = testArticles()

	rr := do(h, jsonRequest(http.MethodPost, "/v1/retrieve", `{"text":"vaccines"}`))
	if rr.Code != http.StatusOK || m.retrieve.gotK != 4 {
		t.Fatalf("status = %d k = %d", rr.Code, m.retrieve.gotK)
	}

	rr = do(h, jsonRequest(http.MethodPost, "/v1/retrieve", `{"text":"vaccines","k":2}`))
	if rr.Code != http.StatusOK || m.retrieve.gotK != 2 {
		t.Errorf("explicit k: status = %d k = %d", rr.Code, m.retrieve.gotK)
	}

	for _, k := range []string{"0", "51"} {
		rr = do(h, jsonRequest(http.MethodPost, "/v1/retrieve", `{"text":"vaccines","k":`+k+`}`))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("k=%s: status = %d, want 400", k, rr.Code)
		}
	}
}

func TestUploadNotes(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	m.notes.sum = corpusuc.Summary{CorpusID: "c-1", Entries: 7}

	rr := do(h, multipartRequest(t, "/v1/notes", nil, "notes.txt", []byte("Cells are small.")))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var got uploadResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "success" || got.ChunksCreated != 7 || got.CorpusID != "c-1" {
		t.Errorf("unexpected body: %+v", got)
	}
	if m.notes.got.Name != "notes.txt" || string(m.notes.got.Data) != "Cells are small." {
		t.Errorf("file = %+v", m.notes.got)
	}
}

func TestUploadNotes_Rejects(t *testing.T) {
	h, _ := newTestRouter(t, Options{MaxUploadBytes: 512})

	rr := do(h, multipartRequest(t, "/v1/notes", map[string]string{"x": "y"}, "", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing file: status = %d", rr.Code)
	}

	rr = do(h, jsonRequest(http.MethodPost, "/v1/notes", `{}`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("json body: status = %d", rr.Code)
	}

	rr = do(h, multipartRequest(t, "/v1/notes", nil, "big.txt", bytes.Repeat([]byte("a"), 4096)))
	if rr.Code != http.StatusRequestEntityTooLarge || decodeError(t, rr).Code != CodePayloadTooLarge {
		t.Errorf("oversized upload: status = %d", rr.Code)
	}
}

func TestAsk(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	m.ask.ans = answer.Grounded{
		Answer:      "ATP.",
		Explanation: "Energy.",
		Sources:     []answer.Source{{ChunkID: 2, Preview: "Mitochondria..."}},
		Confidence:  69,
	}

	rr := do(h, jsonRequest(http.MethodPost, "/v1/notes/ask", `{"question":"What do mitochondria make?"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var got askResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Answer != "ATP." || got.ExplanationSimple != "Energy." || got.Confidence != 69 {
		t.Errorf("unexpected body: %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0].ChunkID != 2 {
		t.Errorf("sources = %+v", got.Sources)
	}

	m.ask.err = domain.ErrProviderQuota
	rr = do(h, jsonRequest(http.MethodPost, "/v1/notes/ask", `{"question":"q"}`))
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("quota: status = %d", rr.Code)
	}
}

func TestGenerate(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	m.generate.out = generation.Output{
		Mode:       generation.ModeFlashcards,
		Flashcards: []generation.Flashcard{{Question: "Q", Answer: "A", EvidenceChunkIDs: []int{1}}},
	}

	rr := do(h, jsonRequest(http.MethodPost, "/v1/notes/generate", `{"mode":"flashcards"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	body := rr.Body.String()
	for _, frag := range []string{`"mode":"flashcards"`, `"flashcards":[{"question":"Q","answer":"A","evidence_chunk_ids":[1]}]`} {
		if !strings.Contains(body, frag) {
			t.Errorf("body missing %s: %s", frag, body)
		}
	}

	m.generate.err = domain.ErrNoCorpus
	rr = do(h, jsonRequest(http.MethodPost, "/v1/notes/generate", `{"mode":"summary"}`))
	if rr.Code != http.StatusConflict {
		t.Errorf("no corpus: status = %d", rr.Code)
	}
}

func TestGetUsage(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	m.usage.report = domusage.NewReport(domusage.PeriodMonth, start, end, "openai", 1200,
		domusage.NewBudget(1000, 0, end))

	rr := do(h, httptest.NewRequest(http.MethodGet, "/v1/usage?period=month", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got usageResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Period != "month" || got.Provider != "openai" || got.Usage.Tokens != 1200 || !got.Budget.IsExhausted {
		t.Errorf("unexpected body: %+v", got)
	}

	rr = do(h, httptest.NewRequest(http.MethodGet, "/v1/usage?period=total", http.NoBody))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad period: status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	h, m := newTestRouter(t, Options{})
	rr := do(h, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rr.Code)
	}

	m.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"evidence_index": healthuc.CheckError},
	}
	rr = do(h, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"evidence_index":"error"`) {
		t.Errorf("body = %s", rr.Body)
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t, Options{})
	rr := do(h, httptest.NewRequest(http.MethodGet, "/v1/nope", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Error("expected JSON error body")
	}
}
