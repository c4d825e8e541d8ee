package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/db"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
	indexrepo "github.com/kailas-cloud/pitchsearch/internal/repository/index"
)

func initIndexCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "init-index",
		Short: "Create the reviews collection if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInitIndex(cmd, envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runInitIndex(cmd *cobra.Command, envFile string) error {
	env, cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(env, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg.VectorStore)
	if err != nil {
		return err
	}
	defer store.Close()

	distance, err := db.ParseDistance(cfg.VectorStore.Distance)
	if err != nil {
		return fmt.Errorf("vector store distance: %w", err)
	}

	metrics.RegisterStoreMetrics()

	repo := indexrepo.New(store, cfg.VectorStore.Driver, cfg.VectorStore.Collection,
		cfg.Embedding.Dimensions, distance).
		WithHNSW(indexrepo.HNSWConfig{
			M:           cfg.VectorStore.HNSWM,
			EFConstruct: cfg.VectorStore.HNSWEFConstruct,
		})

	created, err := repo.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	logger.Info("Index ready",
		zap.String("collection", cfg.VectorStore.Collection),
		zap.Bool("created", created),
	)
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created index %q\n", cfg.VectorStore.Collection)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "index %q already exists\n", cfg.VectorStore.Collection)
	}
	return nil
}
