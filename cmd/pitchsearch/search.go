package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pitchsearch/internal/domain/highlight"
	pitchsearch "github.com/kailas-cloud/pitchsearch/pkg/sdk"
)

const (
	markOpen  = "[["
	markClose = "]]"
)

func searchCmd() *cobra.Command {
	var (
		server  string
		apiKey  string
		origin  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search a running pitchsearch server",
		Long: `Search a running pitchsearch server and print the matching reviews.
Query terms in the excerpt are marked with [[...]].`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = os.Getenv("PITCHSEARCH_API_KEY")
			}
			client, err := pitchsearch.New(server,
				pitchsearch.WithAPIKey(apiKey),
				pitchsearch.WithReviewOrigin(origin),
				pitchsearch.WithTimeout(timeout),
			)
			if err != nil {
				return err //nolint:wrapcheck // sdk errors carry their prefix
			}

			query := strings.Join(args, " ")
			results, err := client.Search(cmd.Context(), query)
			if err != nil {
				if errors.Is(err, pitchsearch.ErrQueryRequired) {
					return errors.New("query is required")
				}
				return fmt.Errorf("search: %w", err)
			}

			printResults(cmd.OutOrStdout(), query, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "pitchsearch server URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (default: $PITCHSEARCH_API_KEY)")
	cmd.Flags().StringVar(&origin, "review-origin", "https://pitchfork.com", "Origin for relative review URLs")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}

func printResults(w io.Writer, query string, results []pitchsearch.Result) {
	if len(results) == 0 {
		_, _ = fmt.Fprintf(w, "No results for %q\n", query)
		return
	}

	for i := range results {
		r := &results[i]
		excerpt := highlight.Build(r.Review.Body, strings.TrimSpace(query))

		_, _ = fmt.Fprintf(w, "%d. %s - %s (%g)\n", i+1, r.Review.Title, r.Review.Artists, r.Review.Score)
		_, _ = fmt.Fprintf(w, "   Similarity: %s%%\n", r.Percent())
		_, _ = fmt.Fprintf(w, "   %s\n", excerpt.Render(markOpen, markClose))
		_, _ = fmt.Fprintf(w, "   %s\n\n", r.Link())
	}
}
