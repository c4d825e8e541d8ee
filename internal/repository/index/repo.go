// Package index bootstraps the reviews index (Redis) or collection (Qdrant).
package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
	"github.com/kailas-cloud/pitchsearch/internal/repository/search"
)

// VectorField is the name of the embedding field in the index schema.
const VectorField = "vector"

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo creates the reviews index when it is missing.
type Repo struct {
	store      store
	driver     string
	collection string
	dim        int
	distance   db.DistanceMetric
	hnsw       HNSWConfig
}

// New creates an index repository. driver only labels metrics.
func New(s store, driver, collection string, dim int, distance db.DistanceMetric) *Repo {
	return &Repo{
		store:      s,
		driver:     driver,
		collection: collection,
		dim:        dim,
		distance:   distance,
		hnsw:       HNSWConfig{M: 16, EFConstruct: 200},
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Definition builds the reviews index: hash records under the collection prefix
// with the review payload fields and one HNSW vector field.
func (r *Repo) Definition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(r.collection).
		Prefix(db.KeyPrefix(r.collection)).
		Text(search.FieldTitle).
		Text(search.FieldArtists).
		Text(search.FieldBody).
		Numeric(search.FieldScore).
		Tag(search.FieldReviewURL).
		VectorHNSW(VectorField, r.dim, r.distance, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index %s: %w", r.collection, err)
	}
	return def, nil
}

// Ensure creates the index unless it already exists.
// It reports whether this call created it.
func (r *Repo) Ensure(ctx context.Context) (bool, error) {
	exists, err := r.observe(db.OpIndexInfo, func() error {
		ok, err := r.store.IndexExists(ctx, r.collection)
		if err != nil {
			return err
		}
		if ok {
			return db.ErrIndexExists
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.collection, err)
	}
	if exists {
		return false, nil
	}

	def, err := r.Definition()
	if err != nil {
		return false, err
	}

	// Another process may create the index between the check and the create.
	exists, err = r.observe(db.OpCreateIndex, func() error {
		return r.store.CreateIndex(ctx, def)
	})
	if err != nil {
		return false, fmt.Errorf("create index %s: %w", r.collection, err)
	}
	return !exists, nil
}

// observe runs fn and records store metrics. ErrIndexExists is reported as
// exists=true and counted as success.
func (r *Repo) observe(op string, fn func() error) (bool, error) {
	start := time.Now()
	err := fn()
	exists := errors.Is(err, db.ErrIndexExists)
	if exists {
		err = nil
	}
	metrics.VectorStoreRequestsTotal.WithLabelValues(r.driver, op, metrics.StoreStatus(err)).Inc()
	metrics.VectorStoreRequestDuration.WithLabelValues(r.driver, op).Observe(time.Since(start).Seconds())
	return exists, err
}
