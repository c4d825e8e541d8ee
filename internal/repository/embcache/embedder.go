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
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

const (
	defaultSize = 1024
	tierL1      = "l1"
	tierL2      = "l2"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb_cache:"

// store is the consumer interface for the shared (L2) embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config controls cache sizing.
type Config struct {
	Size int           // L1 entries; 0 means 1024
	TTL  time.Duration // L2 entry lifetime; 0 keeps entries forever
}

// CachedEmbedder caches embeddings in an in-process LRU backed by an optional
// key-value store. Concurrent misses for the same text share one provider call.
type CachedEmbedder struct {
	inner      domain.Embedder
	l1         *lru.Cache[string, []float32]
	l2         store
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var (
	_ domain.Embedder      = (*CachedEmbedder)(nil)
	_ domain.HealthChecker = (*CachedEmbedder)(nil)
)

// New creates a caching decorator. l2 may be nil.
// cacheTotal is a counter vec with labels "tier" and "result", passed explicitly.
func New(
	inner domain.Embedder,
	l2 store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}
	l1, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		l1:         l1,
		l2:         l2,
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}, nil
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full EmbeddingResult from inner.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.l1.Get(key); ok {
		c.incCache(tierL1, "hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache(tierL1, "miss")

	if c.l2 != nil {
		if vec, ok := c.getFromStore(ctx, key); ok {
			c.incCache(tierL2, "hit")
			c.l1.Add(key, vec)
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		c.incCache(tierL2, "miss")
	}

	// The shared call outlives any single caller, so it drops cancellation.
	// Each caller still stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A call for the same key may have completed since the L1 lookup.
		if vec, ok := c.l1.Get(key); ok {
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		result, err := c.inner.Embed(shared, text)
		if err != nil {
			return nil, err
		}
		c.l1.Add(key, result.Embedding)
		c.putToStore(shared, key, result.Embedding)
		return result, nil
	})

	select {
	case <-ctx.Done():
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", res.Err)
		}
		return res.Val.(domain.EmbeddingResult), nil
	}
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// Len reports the number of L1 entries.
func (c *CachedEmbedder) Len() int { return c.l1.Len() }

func (c *CachedEmbedder) incCache(tier, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(tier, result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.l2.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToStore(ctx context.Context, key string, vec []float32) {
	if c.l2 == nil {
		return
	}
	data := vectorToCacheBytes(vec)
	if err := c.l2.SetWithTTL(ctx, key, data, c.ttl); err != nil {
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
