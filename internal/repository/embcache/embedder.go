package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/db"
	"github.com/kailas-cloud/realitycheck/internal/domain"
)

const cacheKeyPrefix = "emb_cache:"

// Cache levels reported in the cache counter.
const (
	levelLRU = "lru"
	levelKV  = "kv"
)

// store is the consumer interface for the shared second-level cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configures the cache.
type Options struct {
	// Size bounds the in-process LRU.
	Size int
	// Namespace separates vectors of different models/dimensions in the shared store.
	Namespace string
	// TTL of shared-store entries; 0 keeps them forever.
	TTL time.Duration
}

// CachedEmbedder caches final embeddings by the sha256 of the exact input text:
// a bounded in-process LRU first, then an optional shared key-value store.
type CachedEmbedder struct {
	inner      domain.Embedder
	lru        *lru.Cache[string, []float32]
	store      store
	opts       Options
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. s may be nil (LRU only).
// cacheTotal is a counter vec with labels "level" and "result", passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", opts.Size)
	}
	l, err := lru.New[string, []float32](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &CachedEmbedder{
		inner:      inner,
		lru:        l,
		store:      s,
		opts:       opts,
		cacheTotal: cacheTotal,
		logger:     logger,
	}, nil
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full EmbeddingResult from inner.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.lru.Get(key); ok {
		c.incCache(levelLRU, "hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache(levelLRU, "miss")

	if vec, ok := c.getFromStore(ctx, key); ok {
		c.incCache(levelKV, "hit")
		c.lru.Add(key, vec)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.lru.Add(key, result.Embedding)
	c.putToStore(ctx, key, result.Embedding)
	return result, nil
}

// Len returns the number of in-process entries.
func (c *CachedEmbedder) Len() int { return c.lru.Len() }

func (c *CachedEmbedder) incCache(level, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(level, result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + c.opts.Namespace + ":" + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	if c.store == nil {
		return nil, false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		c.incCache(levelKV, "miss")
		return nil, false
	}
	if len(data) == 0 {
		c.incCache(levelKV, "miss")
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		c.incCache(levelKV, "miss")
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToStore(ctx context.Context, key string, vec []float32) {
	if c.store == nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, vectorToCacheBytes(vec), c.opts.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
