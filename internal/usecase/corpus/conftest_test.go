package corpus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	domcorpus "github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/index"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
)

// hashEmbedder returns a deterministic 2-d vector keyed on the text, so tests can
// check that vectors land next to the right documents.
type hashEmbedder struct {
	mu       sync.Mutex
	failOn   string
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (h *hashEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	h.calls.Add(1)
	n := h.inFlight.Add(1)
	defer h.inFlight.Add(-1)
	h.mu.Lock()
	if n > h.peak.Load() {
		h.peak.Store(n)
	}
	h.mu.Unlock()

	if h.failOn != "" && strings.Contains(text, h.failOn) {
		return domain.EmbeddingResult{}, domain.ErrTransport
	}
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

type wordChunker struct{}

// Chunk emits one chunk per line.
func (wordChunker) Chunk(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

type mockSnapshots struct {
	mu      sync.Mutex
	saved   *index.Corpus
	saves   int
	saveErr error
	load    *index.Corpus
	loadErr error
}

func (m *mockSnapshots) Save(_ context.Context, c *index.Corpus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = c
	m.saves++
	return m.saveErr
}

func (m *mockSnapshots) Load(_ context.Context, _ domcorpus.Kind, _ int) (*index.Corpus, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.load == nil {
		return nil, domain.ErrNotFound
	}
	return m.load, nil
}

type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(context.Context, ingest.File) (string, error) {
	return m.text, m.err
}

var errBoom = errors.New("boom")

type fixture struct {
	embed     *hashEmbedder
	evidence  *index.Holder
	notes     *index.Holder
	snapshots *mockSnapshots
	extractor *mockExtractor
	svc       *Service
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		embed:     &hashEmbedder{},
		evidence:  index.NewHolder(),
		notes:     index.NewHolder(),
		snapshots: &mockSnapshots{},
		extractor: &mockExtractor{},
	}
	if opts.Dim == 0 {
		opts.Dim = 2
	}
	f.svc = New(f.embed, f.evidence, f.notes, wordChunker{}, f.extractor, f.snapshots, opts)
	return f
}
