package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/realitycheck/internal/chunker"
	"github.com/kailas-cloud/realitycheck/internal/domain"
	domcorpus "github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/index"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
	"github.com/kailas-cloud/realitycheck/internal/logger"
	"github.com/kailas-cloud/realitycheck/internal/metrics"
)

// Summary describes a freshly published corpus.
type Summary struct {
	CorpusID string
	Entries  int
}

// Options configures index building.
type Options struct {
	Dim          int
	Workers      int
	MaxFileChars int
}

// Service builds corpora and publishes them.
type Service struct {
	embed     Embedder
	evidence  Publisher
	notes     Publisher
	chunks    Chunker
	extractor TextExtractor
	snapshots SnapshotStore
	opts      Options

	// publishMu keeps notes swaps and snapshot writes in the same order.
	publishMu sync.Mutex
}

// New creates a corpus service. snapshots may be nil (no persistence).
func New(
	embed Embedder, evidence, notes Publisher, chunks Chunker,
	extractor TextExtractor, snapshots SnapshotStore, opts Options,
) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{
		embed:     embed,
		evidence:  evidence,
		notes:     notes,
		chunks:    chunks,
		extractor: extractor,
		snapshots: snapshots,
		opts:      opts,
	}
}

// BuildIndex embeds docs and publishes them as the evidence corpus.
// On any error the previously published corpus stays in place.
func (s *Service) BuildIndex(ctx context.Context, docs []domcorpus.Document) (Summary, error) {
	c, err := s.build(ctx, domcorpus.KindEvidence, docs)
	if err != nil {
		return Summary{}, err
	}
	s.evidence.Swap(c)
	return Summary{CorpusID: c.ID, Entries: c.Len()}, nil
}

// Upload extracts the text of f and rebuilds the notes corpus from it.
func (s *Service) Upload(ctx context.Context, f ingest.File) (Summary, error) {
	text, err := s.extractor.Extract(ctx, f)
	if err != nil {
		return Summary{}, fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return s.RebuildFromUpload(ctx, text)
}

// RebuildFromUpload cleans, chunks and embeds text, then replaces the notes corpus.
// The snapshot is written best effort after publishing.
func (s *Service) RebuildFromUpload(ctx context.Context, text string) (Summary, error) {
	text = chunker.Clean(text)
	if s.opts.MaxFileChars > 0 {
		text = domcorpus.Truncate(text, s.opts.MaxFileChars)
	}
	if text == "" {
		return Summary{}, fmt.Errorf("no readable text found: %w", domain.ErrUnreadableDocument)
	}

	parts := s.chunks.Chunk(text)
	if len(parts) == 0 {
		return Summary{}, fmt.Errorf("no chunks produced: %w", domain.ErrUnreadableDocument)
	}
	docs := make([]domcorpus.Document, len(parts))
	for i, p := range parts {
		docs[i] = domcorpus.NewChunk(p)
	}

	c, err := s.build(ctx, domcorpus.KindNotes, docs)
	if err != nil {
		return Summary{}, err
	}
	s.publishNotes(ctx, c)
	return Summary{CorpusID: c.ID, Entries: c.Len()}, nil
}

// publishNotes swaps c in and then writes its snapshot best effort, so the
// persisted corpus is always the one served last.
func (s *Service) publishNotes(ctx context.Context, c *index.Corpus) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.notes.Swap(c)
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, c); err != nil {
		logger.FromContext(ctx).Warn("Failed to persist notes snapshot",
			zap.String("corpus_id", c.ID),
			zap.Error(err),
		)
	}
}

// Restore publishes the persisted notes corpus, if any. It reports whether one was found.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	if s.snapshots == nil {
		return false, nil
	}
	c, err := s.snapshots.Load(ctx, domcorpus.KindNotes, s.opts.Dim)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("restore notes: %w", err)
	}
	s.publishMu.Lock()
	s.notes.Swap(c)
	s.publishMu.Unlock()
	metrics.CorpusEntries.WithLabelValues(string(domcorpus.KindNotes)).Set(float64(c.Len()))
	return true, nil
}

func (s *Service) build(ctx context.Context, kind domcorpus.Kind, docs []domcorpus.Document) (*index.Corpus, error) {
	start := time.Now()

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text()
	}
	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %s corpus: %w", kind, err)
	}

	c, err := index.NewCorpus(kind, s.opts.Dim, docs, vectors)
	if err != nil {
		return nil, fmt.Errorf("build %s corpus: %w", kind, err)
	}

	metrics.CorpusRebuildDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	metrics.CorpusEntries.WithLabelValues(string(kind)).Set(float64(c.Len()))
	logger.FromContext(ctx).Info("Corpus built",
		zap.String("corpus", string(kind)),
		zap.String("corpus_id", c.ID),
		zap.Int("entries", c.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

// embedAll embeds texts with bounded parallelism. vectors[i] belongs to texts[i].
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, text := range texts {
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i+1, err)
			}
			vectors[i] = res.Embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
