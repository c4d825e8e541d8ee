package qdrant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kailas-cloud/pitchsearch/internal/db"
)

// CreateIndex creates a collection sized for the definition's vector field.
// Payload fields are schemaless in Qdrant and are ignored.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if def.Name == "" {
		return errors.New("collection name is required")
	}
	vf := def.VectorField()
	if vf == nil {
		return errors.New("vector field is required")
	}
	distance := vf.VectorDistance
	if distance == "" {
		distance = s.distance
	}

	body := createCollectionRequest{
		Vectors: vectorConfig{Size: vf.VectorDim, Distance: distanceName(distance)},
	}
	err := s.do(ctx, http.MethodPut, collectionPath(def.Name), body, nil)
	if err != nil {
		if statusCode(err) == http.StatusConflict || strings.Contains(err.Error(), "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateCollection, Err: err}
	}
	return nil
}

// IndexExists reports whether the collection exists; 404 means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, http.MethodGet, collectionPath(name), nil, nil)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, &db.Error{Op: db.OpCollectionInfo, Err: err}
	}
	return true, nil
}

func distanceName(d db.DistanceMetric) string {
	switch d {
	case db.DistanceL2:
		return "Euclid"
	case db.DistanceIP:
		return "Dot"
	default:
		return "Cosine"
	}
}
