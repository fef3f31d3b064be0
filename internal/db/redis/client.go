// Package redis implements db.Store on Valkey or Redis through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/realitycheck/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName      = "realitycheck"
	readyBackoff    = 50 * time.Millisecond
	readyMaxBackoff = time.Second
)

// Config holds connection parameters. KeyPrefix namespaces every key
// so several deployments can share one instance.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store holds embedding cache entries, budget counters and corpus snapshots.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore connects to the configured nodes. Client-side caching is off.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   clientName,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

// Ping round-trips a PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with growing pauses until the store answers or timeout passes.
// The last ping error is reported on timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pause := readyBackoff
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %s: %w", timeout, err)
		case <-time.After(pause):
		}
		pause = min(pause*2, readyMaxBackoff)
	}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) b() rueidis.Builder { return s.client.B() }

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}
