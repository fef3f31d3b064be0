package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/realitycheck/internal/db"
	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/index"
)

type mockStore struct {
	data   map[string][]byte
	setErr error
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func testCorpus(t *testing.T) *index.Corpus {
	t.Helper()
	c, err := index.NewCorpus(corpus.KindNotes, 2,
		[]corpus.Document{corpus.NewChunk("first chunk"), corpus.NewChunk("second chunk")},
		[][]float32{{1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestStore_SaveLoad(t *testing.T) {
	ms := &mockStore{data: map[string][]byte{}}
	s := New(ms)
	orig := testCorpus(t)

	if err := s.Save(context.Background(), orig); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := ms.data["snapshot:notes"]; !ok {
		t.Fatal("expected snapshot under snapshot:notes")
	}

	got, err := s.Load(context.Background(), corpus.KindNotes, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != orig.ID {
		t.Errorf("ID = %q, want %q", got.ID, orig.ID)
	}
	if got.Len() != 2 || got.Docs[1].Text() != "second chunk" || got.Docs[1].ID() != 2 {
		t.Errorf("unexpected docs: %+v", got.Docs)
	}
	hits := got.Index.Search([]float32{0, 1}, 1)
	if len(hits) != 1 || hits[0].Position != 1 {
		t.Errorf("restored index search = %+v", hits)
	}
}

func TestStore_LoadErrors(t *testing.T) {
	ms := &mockStore{data: map[string][]byte{}}
	s := New(ms)

	if _, err := s.Load(context.Background(), corpus.KindNotes, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}

	if err := s.Save(context.Background(), testCorpus(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background(), corpus.KindNotes, 384); err == nil {
		t.Error("expected dimension mismatch error")
	}

	ms.data["snapshot:notes"] = []byte("{broken")
	if _, err := s.Load(context.Background(), corpus.KindNotes, 2); err == nil {
		t.Error("expected decode error")
	}
}

func TestStore_SaveErrors(t *testing.T) {
	s := New(&mockStore{data: map[string][]byte{}, setErr: errors.New("down")})
	if err := s.Save(context.Background(), testCorpus(t)); err == nil {
		t.Error("expected store error")
	}
	if err := s.Save(context.Background(), nil); err == nil {
		t.Error("expected error for nil corpus")
	}
}
