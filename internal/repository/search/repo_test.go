package search

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
)

func TestSearchKNN_Query(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Collection != "music_reviews" {
			t.Errorf("unexpected collection: %s", q.Collection)
		}
		if q.K != 10 {
			t.Errorf("unexpected K: %d", q.K)
		}
		if len(q.Vector) != 4 {
			t.Errorf("unexpected vector length: %d", len(q.Vector))
		}
		if !slices.Equal(q.ReturnFields, ReturnFields) {
			t.Errorf("unexpected return fields: %v", q.ReturnFields)
		}
		return &db.SearchResult{}, nil
	}

	results, err := repo.SearchKNN(context.Background(), testVector(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", results)
	}
}

func TestSearchKNN_DistanceScores(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total:     2,
			ScoreKind: db.ScoreDistance,
			Entries: []db.SearchEntry{
				{
					ID:    "r-1",
					Score: 0.1234,
					Payload: map[string]any{
						"title":      "Blonde",
						"artists":    "Frank Ocean",
						"body":       "A quiet record.",
						"score":      "9.5",
						"review_url": "/reviews/albums/blonde",
					},
				},
				{ID: "r-2", Score: 1.7, Payload: map[string]any{"title": "Far"}},
			},
		}, nil
	}

	results, err := repo.SearchKNN(context.Background(), testVector(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.ID() != "r-1" {
		t.Errorf("expected ID r-1, got %s", first.ID())
	}
	if math.Abs(first.Score()-0.8766) > 1e-9 {
		t.Errorf("expected similarity 0.8766, got %f", first.Score())
	}
	if first.Percent() != "87.66" {
		t.Errorf("expected 87.66, got %s", first.Percent())
	}
	rv := first.Review()
	if rv.Title != "Blonde" || rv.Artists != "Frank Ocean" || rv.Score != 9.5 {
		t.Errorf("unexpected review: %+v", rv)
	}
	if rv.ReviewURL != "/reviews/albums/blonde" {
		t.Errorf("unexpected url: %s", rv.ReviewURL)
	}

	// Distance over 1 clamps to zero similarity; missing fields default.
	second := results[1]
	if second.Score() != 0 {
		t.Errorf("expected clamped similarity 0, got %f", second.Score())
	}
	if r := second.Review(); r.Body != "" || r.Score != 0 || r.ReviewURL != "" {
		t.Errorf("expected defaults for missing fields, got %+v", r)
	}
}

func TestSearchKNN_SimilarityScores(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			ScoreKind: db.ScoreSimilarity,
			Entries: []db.SearchEntry{
				{ID: "42", Score: 0.91, Payload: map[string]any{
					"score":   json.Number("8.1"),
					"artists": []any{"Daft Punk", "Pharrell"},
				}},
				{ID: "43", Score: 1.0001, Payload: map[string]any{"score": 7.0}},
			},
		}, nil
	}

	results, err := repo.SearchKNN(context.Background(), testVector(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Score() != 0.91 {
		t.Errorf("expected 0.91, got %f", results[0].Score())
	}
	if r := results[0].Review(); r.Score != 8.1 || r.Artists != "Daft Punk, Pharrell" {
		t.Errorf("unexpected review: %+v", r)
	}
	if results[1].Score() != 1 {
		t.Errorf("expected clamp to 1, got %f", results[1].Score())
	}
	if results[1].Review().Score != 7 {
		t.Errorf("expected float score 7, got %f", results[1].Review().Score)
	}
}

func TestSearchKNN_MissingPayloadFails(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			ScoreKind: db.ScoreDistance,
			Entries: []db.SearchEntry{
				{ID: "ok", Payload: map[string]any{"title": "fine"}},
				{ID: "broken"},
			},
		}, nil
	}

	_, err := repo.SearchKNN(context.Background(), testVector(), 10)
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	storeErr := &db.Error{Op: db.OpSearch, Err: errors.New("connection reset")}
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, storeErr
	}

	before := testutil.ToFloat64(metrics.VectorStoreRequestsTotal.WithLabelValues("test", db.OpSearch, "error"))

	_, err := repo.SearchKNN(context.Background(), testVector(), 10)
	if !errors.Is(err, domain.ErrVectorStoreError) {
		t.Fatalf("expected ErrVectorStoreError, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}

	after := testutil.ToFloat64(metrics.VectorStoreRequestsTotal.WithLabelValues("test", db.OpSearch, "error"))
	if after-before != 1 {
		t.Errorf("expected error counter to increase by 1, got %v", after-before)
	}
}

func TestNumberField(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"8.4", 8.4},
		{" 10 ", 10},
		{"n/a", 0},
		{int64(7), 7},
		{float32(6.5), 6.5},
		{nil, 0},
		{true, 0},
	}
	for _, tt := range tests {
		if got := numberField(tt.in); got != tt.want {
			t.Errorf("numberField(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
