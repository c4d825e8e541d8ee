// Package main is the entry point for the pitchsearch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/config"
	logpkg "github.com/kailas-cloud/pitchsearch/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pitchsearch",
		Short: "Semantic search over Pitchfork music reviews",
		Long: `pitchsearch serves a semantic search API and web page over an index of
Pitchfork music reviews stored in Qdrant or Redis.

Configuration is read from config/{ENV}.yaml (ENV defaults to local).
A .env file in the current directory is loaded first when present.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(initIndexCmd())
	cmd.AddCommand(searchCmd())
	cmd.AddCommand(downloadModelCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads the .env file and the YAML config for the current environment.
func loadConfig(envFile string) (string, config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return "", config.Config{}, fmt.Errorf("load env file: %w", err)
	}
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return env, cfg, nil
}

func newLogger(env string, cfg config.Config) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
