// Package local runs a sentence-transformers model in-process via hugot.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
)

const providerName = "local"

// modelRuntime holds the process-wide hugot session and pipeline.
// It is built on first use and kept until the process exits.
// The mutex serializes initialization and inference. ready is set once the
// pipeline is built and may be read without the mutex.
var modelRuntime struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	mu       sync.Mutex
	ready    atomic.Bool
}

// Config holds local embedder settings.
type Config struct {
	Model           string // Hugging Face model id, e.g. sentence-transformers/all-MiniLM-L6-v2
	ModelDir        string // directory holding downloaded models
	Dimensions      int    // expected vector size; 0 skips the check
	OnnxLibraryPath string // only used by ORT builds
	Logger          *zap.Logger
}

// Embedder produces mean-pooled, L2-normalized sentence embeddings locally.
type Embedder struct {
	model      string
	modelDir   string
	dimensions int
	onnxLib    string
	logger     *zap.Logger
}

var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// NewEmbedder creates a local embedder. No model is loaded until the first Embed.
func NewEmbedder(cfg Config) *Embedder {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		model:      cfg.Model,
		modelDir:   cfg.ModelDir,
		dimensions: cfg.Dimensions,
		onnxLib:    cfg.OnnxLibraryPath,
		logger:     logger,
	}
}

// Embed implements domain.Embedder. Token usage is not reported.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}

	if err := e.initialize(); err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "unavailable").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("load model %s: %v: %w", e.model, err, domain.ErrEmbedderUnavailable)
	}

	start := time.Now()

	modelRuntime.mu.Lock()
	out, err := modelRuntime.pipeline.RunPipeline([]string{text})
	modelRuntime.mu.Unlock()

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "inference").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("run embedding pipeline: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(out.Embeddings) == 0 || len(out.Embeddings[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding output: %w", domain.ErrEmbeddingProviderError)
	}

	vec := out.Embeddings[0]
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "dimension_mismatch").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("model returned %d dimensions, want %d: %w",
			len(vec), e.dimensions, domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck reports whether model files are present. It does not load the model.
func (e *Embedder) HealthCheck(_ context.Context) error {
	if modelRuntime.ready.Load() {
		return nil
	}
	if _, err := e.modelPath(); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrEmbedderUnavailable)
	}
	return nil
}

// Close is a no-op: the runtime is shared by the whole process.
func (e *Embedder) Close() error { return nil }

func (e *Embedder) initialize() error {
	modelRuntime.mu.Lock()
	defer modelRuntime.mu.Unlock()

	if modelRuntime.ready.Load() {
		return nil
	}

	modelPath, err := e.modelPath()
	if err != nil {
		return err
	}

	session, err := newSession(e.onnxLib)
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "pitchsearch-query-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	e.logger.Info("Local embedding model loaded",
		zap.String("model", e.model),
		zap.String("path", modelPath),
	)

	modelRuntime.session = session
	modelRuntime.pipeline = pipeline
	modelRuntime.ready.Store(true)
	return nil
}

// modelPath finds the model directory under modelDir. The directory named after
// the model id wins; otherwise the first subdirectory holding tokenizer.json is used.
func (e *Embedder) modelPath() (string, error) {
	preferred := filepath.Join(e.modelDir, ModelDirName(e.model))
	if hasTokenizer(preferred) {
		return preferred, nil
	}

	entries, err := os.ReadDir(e.modelDir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", e.modelDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(e.modelDir, entry.Name())
		if hasTokenizer(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model subdirectory with tokenizer.json found in %s", e.modelDir)
}

func hasTokenizer(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "tokenizer.json"))
	return err == nil
}

// ModelDirName is the directory name hugot downloads a model id into.
func ModelDirName(model string) string {
	return strings.ReplaceAll(model, "/", "_")
}
