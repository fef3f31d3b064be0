// Package db declares the optional persistence backend shared by the
// embedding cache, the token budget and corpus snapshots.
package db

import (
	"context"
	"time"
)

// Store is everything main needs from a backend.
type Store interface {
	Pinger
	Blobs
	Counters
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity for health reporting.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Blobs stores opaque values: cached vectors and serialized corpora.
// Get returns ErrKeyNotFound for a missing key.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Counters are integer keys with an expiry, used for token budgets.
// With nx set, Expire leaves an existing expiry untouched.
type Counters interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
