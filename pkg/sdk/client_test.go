package pitchsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "ftp://host"} {
		if _, err := New(u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestSearch_Success(t *testing.T) {
	var gotQuery, gotAuth, gotPath string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var req searchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotQuery = req.Query
		writeJSON(w, http.StatusOK, map[string]any{
			"result": []map[string]any{{
				"id":    "abc",
				"score": 0.87314,
				"payload": map[string]any{
					"title":      "Blonde",
					"artists":    "Frank Ocean",
					"body":       "Summer.",
					"score":      9,
					"review_url": "/reviews/albums/blonde",
				},
			}},
		})
	})

	c, err := New(srv.URL+"/", WithAPIKey("secret"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := c.Search(context.Background(), "summer")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/api/search" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotQuery != "summer" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth %q", gotAuth)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.ID != "abc" || r.Review.Title != "Blonde" || r.Review.Score != 9 {
		t.Errorf("unexpected result %+v", r)
	}
	if r.Percent() != "87.31" {
		t.Errorf("expected 87.31, got %s", r.Percent())
	}
	if r.Link() != "https://pitchfork.com/reviews/albums/blonde" {
		t.Errorf("unexpected link %s", r.Link())
	}
}

func TestSearch_EmptyResultIsNotNil(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"result": nil})
	})
	c, _ := New(srv.URL)

	results, err := c.Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

func TestSearch_BlankQueryIsLocal(t *testing.T) {
	called := false
	srv := newTestServer(t, func(_ http.ResponseWriter, _ *http.Request) { called = true })
	c, _ := New(srv.URL)

	_, err := c.Search(context.Background(), "   ")
	if !errors.Is(err, ErrQueryRequired) {
		t.Fatalf("expected ErrQueryRequired, got %v", err)
	}
	if called {
		t.Error("blank query must not reach the server")
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   error
	}{
		{"required", http.StatusBadRequest, "Query is required", ErrQueryRequired},
		{"invalid body", http.StatusBadRequest, "Invalid request body", ErrInvalidRequest},
		{"unauthorized", http.StatusUnauthorized, "Unauthorized", ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, "Rate limit exceeded", ErrRateLimited},
		{"failed", http.StatusInternalServerError, "Failed to perform search", ErrSearchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": tt.msg})
			})
			c, _ := New(srv.URL)

			_, err := c.Search(context.Background(), "x")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want != ErrQueryRequired && errors.Is(err, ErrQueryRequired) {
				t.Errorf("%s must not map to ErrQueryRequired", tt.msg)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatal("expected *APIError")
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.msg {
				t.Errorf("unexpected api error %+v", apiErr)
			}
		})
	}
}

func TestSearch_NonJSONError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	c, _ := New(srv.URL)

	_, err := c.Search(context.Background(), "x")
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("expected 5xx to be retryable")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   HealthStatus
	}{
		{"ok", http.StatusOK, HealthStatus{Status: "ok", Checks: map[string]string{"vector_store": "ok"}}},
		{"degraded", http.StatusServiceUnavailable, HealthStatus{Status: "degraded", Checks: map[string]string{"vector_store": "error"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				writeJSON(w, tt.status, tt.body)
			})
			c, _ := New(srv.URL)

			hs, err := c.Health(context.Background())
			if err != nil {
				t.Fatalf("Health: %v", err)
			}
			if hs.Status != tt.body.Status || hs.Checks["vector_store"] != tt.body.Checks["vector_store"] {
				t.Errorf("unexpected status %+v", hs)
			}
			if hs.OK() != (tt.status == http.StatusOK) {
				t.Errorf("unexpected OK() for %s", tt.name)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"result": []any{}})
	})
	reg := prometheus.NewRegistry()

	c, err := New(srv.URL, WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// A second client on the same registry reuses the collectors.
	if _, err := New(srv.URL, WithPrometheus(reg)); err != nil {
		t.Fatalf("second New: %v", err)
	}

	_, _ = c.Search(context.Background(), "x")
	_, _ = c.Search(context.Background(), " ")

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("expected 1 ok search, got %v", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("expected 1 failed search, got %v", got)
	}
}
