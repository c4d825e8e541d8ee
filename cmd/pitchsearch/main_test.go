package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/pitchsearch/internal/config"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
	embeddinguc "github.com/kailas-cloud/pitchsearch/internal/usecase/embedding"
)

func TestRootCmd_Subcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "init-index": false, "search": false, "download-model": false, "version": false}
	for _, c := range rootCmd().Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "pitchsearch version ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSearchCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Query != "party anthem" {
			t.Errorf("unexpected query %q", req.Query)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{{
				"id":    "1",
				"score": 0.9,
				"payload": map[string]any{
					"title":      "Melodrama",
					"artists":    "Lorde",
					"body":       "A great party record. Slow and sad in places.",
					"score":      9.2,
					"review_url": "/reviews/albums/melodrama",
				},
			}},
		})
	}))
	defer srv.Close()

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"search", "--server", srv.URL, "party", "anthem"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"1. Melodrama - Lorde (9.2)",
		"Similarity: 90.00%",
		"A great [[party]] record",
		"https://pitchfork.com/reviews/albums/melodrama",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Slow and sad") {
		t.Error("non-matching sentence must be dropped")
	}
}

func TestPrintResults_Empty(t *testing.T) {
	var out bytes.Buffer
	printResults(&out, "nothing", nil)
	if out.String() != "No results for \"nothing\"\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBuildEmbedder_Chain(t *testing.T) {
	cfg := config.Config{
		Embedding: config.EmbeddingConfig{
			Provider:   config.ProviderLocal,
			Model:      "sentence-transformers/all-MiniLM-L6-v2",
			Dimensions: 384,
			ModelDir:   t.TempDir(),
		},
		Cache: config.CacheConfig{Enabled: true, Size: 8},
	}

	emb, err := buildEmbedder(cfg, nil, nil)
	if err != nil {
		t.Fatalf("buildEmbedder: %v", err)
	}
	if _, ok := emb.(*embeddinguc.InstrumentedEmbedder); !ok {
		t.Fatalf("expected instrumented embedder outermost, got %T", emb)
	}

	cfg.Embedding.QueryInstruction = "query: "
	emb, err = buildEmbedder(cfg, nil, nil)
	if err != nil {
		t.Fatalf("buildEmbedder: %v", err)
	}
	if _, ok := emb.(*domain.InstructionEmbedder); !ok {
		t.Fatalf("expected instruction embedder outermost, got %T", emb)
	}

	// Health reaches the local provider through every decorator.
	hc := &embeddingHealthChecker{embedder: emb}
	if err := hc.HealthCheck(context.Background()); err == nil {
		t.Error("expected health error without a downloaded model")
	}

	cfg.Embedding.Provider = "unknown"
	if _, err := buildEmbedder(cfg, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
