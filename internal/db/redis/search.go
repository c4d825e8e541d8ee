package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pitchsearch/internal/db"
)

const vectorScoreField = "__vector_score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// The index is named after the collection. Scores are raw distances.
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

	queryStr := fmt.Sprintf("*=>[KNN %d @vector $BLOB]", q.K)
	args := []string{q.Collection, queryStr}

	if len(q.ReturnFields) > 0 {
		fields := q.ReturnFields
		if !slices.Contains(fields, vectorScoreField) {
			fields = append(slices.Clone(fields), vectorScoreField)
		}
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	args = append(args,
		"SORTBY", vectorScoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw, db.KeyPrefix(q.Collection))
}

func parseKNNResult(raw []rueidis.RedisMessage, prefix string) (*db.SearchResult, error) {
	res := &db.SearchResult{ScoreKind: db.ScoreDistance}
	if len(raw) == 0 {
		return res, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	res.Total = int(total)
	if total == 0 {
		return res, nil
	}

	res.Entries = make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		pairs := parseFieldPairs(fields)
		entry := db.SearchEntry{ID: strings.TrimPrefix(key, prefix)}

		if scoreStr, ok := pairs[vectorScoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = d
			}
			delete(pairs, vectorScoreField)
		}

		if len(pairs) > 0 {
			entry.Payload = make(map[string]any, len(pairs))
			for k, v := range pairs {
				entry.Payload[k] = v
			}
		}

		res.Entries = append(res.Entries, entry)
	}

	return res, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
