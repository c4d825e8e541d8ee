package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/config"
	"github.com/kailas-cloud/pitchsearch/internal/db"
	dbQdrant "github.com/kailas-cloud/pitchsearch/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/pitchsearch/internal/db/redis"
	"github.com/kailas-cloud/pitchsearch/internal/domain"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
	"github.com/kailas-cloud/pitchsearch/internal/repository/embcache"
	"github.com/kailas-cloud/pitchsearch/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/pitchsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/pitchsearch/internal/usecase/embedding"
)

// openStore creates the configured vector store and waits until it answers.
func openStore(ctx context.Context, cfg config.VectorStoreConfig) (db.VectorStore, error) {
	distance, err := db.ParseDistance(cfg.Distance)
	if err != nil {
		return nil, fmt.Errorf("vector store distance: %w", err)
	}

	var store db.VectorStore
	switch cfg.Driver {
	case config.DriverQdrant:
		store, err = dbQdrant.NewStore(dbQdrant.Config{
			URL:      cfg.URL,
			APIKey:   cfg.APIKey,
			Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
			Distance: distance,
		})
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	default:
		return nil, fmt.Errorf("unknown vector store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

// openCacheStore returns the shared embedding cache. The redis vector store doubles
// as the cache; otherwise cache.redis_addrs opens a dedicated client. nil means L1 only.
func openCacheStore(cfg config.Config, store db.VectorStore) (db.KVStore, func(), error) {
	if kv, ok := store.(db.KVStore); ok {
		return kv, func() {}, nil
	}
	if len(cfg.Cache.RedisAddrs) == 0 {
		return nil, func() {}, nil
	}
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.RedisAddrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create cache store: %w", err)
	}
	return s, s.Close, nil
}

// buildEmbedder assembles the decorator chain: provider -> cache -> instrumented -> instruction.
func buildEmbedder(cfg config.Config, kv db.KVStore, logger *zap.Logger) (domain.Embedder, error) {
	ec := cfg.Embedding

	var base domain.Embedder
	switch ec.Provider {
	case config.ProviderLocal:
		base = local.NewEmbedder(local.Config{
			Model:           ec.Model,
			ModelDir:        ec.ModelDir,
			Dimensions:      ec.Dimensions,
			OnnxLibraryPath: ec.OnnxLibraryPath,
			Logger:          logger,
		})
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			User:       ec.User,
			Provider:   ec.Provider,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}

	embedder := base
	if cfg.Cache.Enabled {
		cached, err := embcache.New(base, kv, embcache.Config{
			Size: cfg.Cache.Size,
			TTL:  time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		embedder = cached
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, logger)

	// Outermost so the cache key includes the instruction.
	if ec.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, ec.QueryInstruction)
	}
	return embedder, nil
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
