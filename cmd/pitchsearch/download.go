package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pitchsearch/internal/transport/local"
)

func downloadModelCmd() *cobra.Command {
	var (
		envFile string
		model   string
		dest    string
	)

	cmd := &cobra.Command{
		Use:   "download-model",
		Short: "Download the local embedding model from the Hugging Face hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if model == "" || dest == "" {
				_, cfg, err := loadConfig(envFile)
				if err != nil {
					return err
				}
				if model == "" {
					model = cfg.Embedding.Model
				}
				if dest == "" {
					dest = cfg.Embedding.ModelDir
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "downloading %s into %s\n", model, dest)
			path, err := local.DownloadModel(model, dest)
			if err != nil {
				return err //nolint:wrapcheck // already carries the model name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&model, "model", "", "Hugging Face model id (default: embedding.model from config)")
	cmd.Flags().StringVar(&dest, "dir", "", "Destination directory (default: embedding.model_dir from config)")

	return cmd
}
