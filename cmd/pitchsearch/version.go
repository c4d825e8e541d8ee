package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pitchsearch/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "pitchsearch version %s\n", version.Version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}
