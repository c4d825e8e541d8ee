package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/config"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
	searchrepo "github.com/kailas-cloud/pitchsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/pitchsearch/internal/transport/chi"
	"github.com/kailas-cloud/pitchsearch/internal/transport/web"
	healthuc "github.com/kailas-cloud/pitchsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/pitchsearch/internal/usecase/search"
	"github.com/kailas-cloud/pitchsearch/internal/version"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server: the search API, the search page and the preference forms.

Environment variables referenced by the bundled config files:
  ENV                   Config file to load: config/{ENV}.yaml (default: local)
  PORT                  HTTP port (default: 8080)
  VECTOR_STORE_DRIVER   qdrant or redis (default: qdrant)
  QDRANT_URL            Qdrant REST endpoint
  QDRANT_API_KEY        Qdrant API key
  REDIS_ADDR            Redis address for the redis driver
  COLLECTION            Collection / index name (default: music_reviews)
  EMBEDDING_PROVIDER    local or openai (default: local)
  EMBEDDING_MODEL       Embedding model id
  MODEL_DIR             Directory holding downloaded local models
  OPENAI_API_KEY        API key for the openai provider
  OPENAI_BASE_URL       Base URL for the openai provider
  LOG_LEVEL             debug, info, warn, error`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides config)")

	return cmd
}

func runServe(ctx context.Context, envFile string, port int) error {
	env, cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.HTTP.Port = port
	}

	logger, err := newLogger(env, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pitchsearch server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("vector_store", cfg.VectorStore.Driver),
		zap.String("collection", cfg.VectorStore.Collection),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// buildServer is the composition root. The returned cleanup closes every store.
func buildServer(ctx context.Context, cfg config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	store, err := openStore(ctx, cfg.VectorStore)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to vector store", zap.String("driver", cfg.VectorStore.Driver))

	kv, closeKV, err := openCacheStore(cfg, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	cleanup := func() {
		closeKV()
		store.Close()
	}

	metrics.RegisterStoreMetrics()
	metrics.RegisterEmbeddingMetrics()

	embedder, err := buildEmbedder(cfg, kv, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("shared_cache", kv != nil),
	)

	searchRepo := searchrepo.New(store, cfg.VectorStore.Driver, cfg.VectorStore.Collection)
	searchSvc := searchuc.New(searchRepo, embedder, cfg.Search.TopK)
	healthSvc := healthuc.New(store, &embeddingHealthChecker{embedder: embedder})

	pages, err := web.NewHandler(searchSvc, cfg.Search.ReviewOrigin)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create web handler: %w", err)
	}

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		Pages:          pages.Routes,
	}, logger)

	return handler, cleanup, nil
}
