package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
	"github.com/kailas-cloud/pitchsearch/internal/domain/review"
	"github.com/kailas-cloud/pitchsearch/internal/domain/search/result"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
)

// Review payload field names, shared by every driver.
const (
	FieldTitle     = "title"
	FieldArtists   = "artists"
	FieldBody      = "body"
	FieldScore     = "score"
	FieldReviewURL = "review_url"
)

// ReturnFields lists the payload fields fetched for every hit.
var ReturnFields = []string{FieldTitle, FieldArtists, FieldBody, FieldScore, FieldReviewURL}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store      store
	driver     string
	collection string
}

// New creates a search repository over one collection.
// driver only labels metrics.
func New(s store, driver, collection string) *Repo {
	return &Repo{store: s, driver: driver, collection: collection}
}

// SearchKNN returns the topK reviews nearest to vector, best first.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, topK int) ([]result.Result, error) {
	q := &db.KNNQuery{
		Collection:   r.collection,
		Vector:       vector,
		K:            topK,
		ReturnFields: ReturnFields,
	}

	start := time.Now()
	sr, err := r.store.SearchKNN(ctx, q)
	metrics.VectorStoreRequestsTotal.WithLabelValues(r.driver, db.OpSearch, metrics.StoreStatus(err)).Inc()
	metrics.VectorStoreRequestDuration.WithLabelValues(r.driver, db.OpSearch).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w: %w", r.collection, domain.ErrVectorStoreError, err)
	}

	return parseKNNResults(sr)
}

// parseKNNResults converts db.SearchResult into []result.Result.
// A hit without any payload fails the whole batch.
func parseKNNResults(sr *db.SearchResult) ([]result.Result, error) {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}, nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Payload == nil {
			return nil, fmt.Errorf("hit %q has no payload: %w", entry.ID, domain.ErrMalformedRecord)
		}
		results = append(results, result.New(entry.ID, similarity(sr.ScoreKind, entry.Score), parseReview(entry.Payload)))
	}
	return results, nil
}

func similarity(kind db.ScoreKind, score float64) float64 {
	if kind == db.ScoreDistance {
		return result.SimilarityFromDistance(score)
	}
	return result.ClampSimilarity(score)
}

// parseReview reads the review fields. Missing fields fall back to zero values.
func parseReview(p map[string]any) review.Review {
	return review.New(
		stringField(p[FieldTitle]),
		stringField(p[FieldArtists]),
		stringField(p[FieldBody]),
		numberField(p[FieldScore]),
		stringField(p[FieldReviewURL]),
	)
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// numberField accepts JSON numbers (Qdrant) and numeric strings (Redis hashes).
func numberField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
