package embcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms, counter := newTestCachedEmbedder(t, inner)

	var gotTTL time.Duration
	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		setCalled = true
		gotTTL = ttl
		return nil
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !setCalled || gotTTL != time.Hour {
		t.Fatalf("expected SetWithTTL with 1h, called=%v ttl=%v", setCalled, gotTTL)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("l1", "miss")); got != 1 {
		t.Errorf("expected 1 l1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("l2", "miss")); got != 1 {
		t.Errorf("expected 1 l2 miss, got %v", got)
	}
}

func TestEmbed_L1Hit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2},
		TotalTokens: 4,
	}}
	ce, ms, counter := newTestCachedEmbedder(t, inner)

	if _, err := ce.Embed(context.Background(), "same"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		t.Fatal("L2 should not be consulted on an L1 hit")
		return nil, nil
	}

	result, err := ce.Embed(context.Background(), "same")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalTokens != 0 {
		t.Errorf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls.Load())
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("l1", "hit")); got != 1 {
		t.Errorf("expected 1 l1 hit, got %v", got)
	}
	if ce.Len() != 1 {
		t.Errorf("expected 1 L1 entry, got %d", ce.Len())
	}
}

func TestEmbed_L2HitPopulatesL1(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	ce, ms, counter := newTestCachedEmbedder(t, inner)

	cached := vectorToCacheBytes([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if inner.calls.Load() != 0 {
		t.Errorf("expected no inner calls, got %d", inner.calls.Load())
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("l2", "hit")); got != 1 {
		t.Errorf("expected 1 l2 hit, got %v", got)
	}
	if ce.Len() != 1 {
		t.Errorf("expected L2 hit to populate L1")
	}
}

func TestEmbed_L2ErrorIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms, _ := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection refused")
	}

	result, err := ce.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("L2 failures must not fail the request: %v", err)
	}
	if result.Embedding[0] != 0.7 {
		t.Errorf("unexpected vector %v", result.Embedding)
	}
}

func TestEmbed_CorruptL2EntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms, _ := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("expected inner call after corrupt entry, got %d", inner.calls.Load())
	}
}

func TestEmbed_WithoutL2(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.3}}}
	ce, err := New(inner, nil, Config{}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for range 3 {
		if _, err := ce.Embed(context.Background(), "q"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.calls.Load() != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls.Load())
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	ce, _, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "test text")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if ce.Len() != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

func TestEmbed_ConcurrentMissesShareOneCall(t *testing.T) {
	inner := &mockEmbedder{
		result: domain.EmbeddingResult{Embedding: []float32{0.5}},
		block:  make(chan struct{}),
	}
	ce, _, _ := newTestCachedEmbedder(t, inner)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ce.Embed(context.Background(), "popular query")
			errs <- err
		}()
	}

	// Let the goroutines reach the shared call before releasing it.
	deadline := time.After(2 * time.Second)
	for inner.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("inner embedder was never called")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	time.Sleep(20 * time.Millisecond)
	close(inner.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Goroutines arriving after the shared call finished hit L1 instead.
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("expected 1 inner call, got %d", got)
	}
}

func TestEmbed_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	inner := &mockEmbedder{
		result: domain.EmbeddingResult{Embedding: []float32{0.7}},
		block:  make(chan struct{}),
		ctxErr: make(chan error, 1),
	}
	ce, _, _ := newTestCachedEmbedder(t, inner)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := ce.Embed(firstCtx, "shared query")
		firstErr <- err
	}()

	deadline := time.After(2 * time.Second)
	for inner.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("inner embedder was never called")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	secondDone := make(chan error, 1)
	go func() {
		res, err := ce.Embed(context.Background(), "shared query")
		if err == nil && (len(res.Embedding) != 1 || res.Embedding[0] != 0.7) {
			err = errors.New("unexpected vector")
		}
		secondDone <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled for the cancelled caller, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting on the shared call")
	}

	close(inner.block)
	if err := <-inner.ctxErr; err != nil {
		t.Errorf("shared call saw a cancelled context: %v", err)
	}
	if err := <-secondDone; err != nil {
		t.Fatalf("waiter failed: %v", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("expected 1 inner call, got %d", got)
	}
	if ce.Len() != 1 {
		t.Error("result of the shared call must be cached")
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3, 4, 5}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetFromStore_KeyNotFoundIsSilentMiss(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms, _ := newTestCachedEmbedder(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}
	if _, ok := ce.getFromStore(context.Background(), "k"); ok {
		t.Fatal("expected miss")
	}
}
