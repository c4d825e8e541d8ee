package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/pitchsearch/internal/db"
)

// SearchKNN runs a nearest-neighbour search over a collection.
// Scores are similarities for Cosine and Dot collections, distances for Euclid.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	req := searchRequest{Vector: q.Vector, Limit: q.K, WithPayload: true}
	if len(q.ReturnFields) > 0 {
		req.WithPayload = q.ReturnFields
	}

	var resp searchResponse
	if err := s.do(ctx, http.MethodPost, collectionPath(q.Collection)+"/points/search", req, &resp); err != nil {
		return nil, &db.Error{Op: db.OpPointsSearch, Err: err}
	}

	res := &db.SearchResult{
		Total:     len(resp.Result),
		ScoreKind: s.scoreKind,
		Entries:   make([]db.SearchEntry, 0, len(resp.Result)),
	}
	for _, p := range resp.Result {
		res.Entries = append(res.Entries, db.SearchEntry{
			ID:      pointID(p.ID),
			Score:   p.Score,
			Payload: p.Payload,
		})
	}
	return res, nil
}

// pointID renders an integer or UUID point id as a string.
func pointID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return strconv.FormatUint(u, 10)
		}
		return n.String()
	}
	return string(raw)
}
