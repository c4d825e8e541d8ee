package embcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  atomic.Int32
	block  chan struct{}
	ctxErr chan error // receives ctx.Err() as seen after block, when set
}

func (m *mockEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls.Add(1)
	if m.block != nil {
		<-m.block
	}
	if m.ctxErr != nil {
		m.ctxErr <- ctx.Err()
	}
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newCacheCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_embedding_cache_total"},
		[]string{"tier", "result"},
	)
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockKVStore{}
	counter := newCacheCounter()
	ce, err := New(inner, ms, Config{Size: 8, TTL: time.Hour}, counter, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ce, ms, counter
}
