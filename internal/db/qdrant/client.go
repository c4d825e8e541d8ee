// Package qdrant implements db.VectorStore over the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/pitchsearch/internal/db"
)

var _ db.VectorStore = (*Store)(nil)

const maxErrorBody = 4 << 10

// Config holds connection parameters for a Qdrant store.
type Config struct {
	URL      string
	APIKey   string
	Timeout  time.Duration
	Distance db.DistanceMetric // metric the collections use; decides how scores are read
}

// Store implements db.VectorStore over HTTP.
type Store struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	scoreKind db.ScoreKind
	distance  db.DistanceMetric
}

// NewStore creates a Qdrant store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return newStore(cfg, &http.Client{Timeout: timeout}), nil
}

func newStore(cfg Config, hc *http.Client) *Store {
	distance := cfg.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}
	kind := db.ScoreSimilarity
	if distance == db.DistanceL2 {
		kind = db.ScoreDistance
	}
	return &Store{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		apiKey:    cfg.APIKey,
		http:      hc,
		scoreKind: kind,
		distance:  distance,
	}
}

// Ping checks connectivity via the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.http.CloseIdleConnections()
}

// WaitForReady retries Ping with backoff until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// statusError is a non-2xx response.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("qdrant status %d", e.Code)
	}
	return fmt.Sprintf("qdrant status %d: %s", e.Code, e.Message)
}

func statusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// do sends a JSON request and decodes a 2xx response into out when non-nil.
func (s *Store) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &statusError{Code: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Status.Error != "" {
			se.Message = er.Status.Error
		} else {
			se.Message = strings.TrimSpace(string(raw))
		}
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func collectionPath(name string) string {
	return "/collections/" + url.PathEscape(name)
}
