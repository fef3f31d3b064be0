// Package budget keeps embedding token counters in the KV store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/realitycheck/internal/db"
)

type counterStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store is a counter repository: one integer key per budget period.
type Store struct {
	kv counterStore
}

// New creates a budget repository over kv.
func New(kv counterStore) *Store {
	return &Store{kv: kv}
}

// Add increments key by tokens. The first increment of a key fixes its ttl;
// later ones leave the expiry alone.
func (s *Store) Add(ctx context.Context, key string, tokens int64, ttl time.Duration) error {
	if err := s.kv.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("add to %s: %w", key, err)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.kv.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Load returns the counter at key. A missing key reads as zero.
func (s *Store) Load(ctx context.Context, key string) (int64, error) {
	raw, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("load %s: %w", key, err)
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("load %s: counter %q is not an integer", key, raw)
	}
	return n, nil
}
