package commands

import (
	"context"
	"soccer-forecasts/cmd/forecasts-cli/globals"
	"soccer-forecasts/internal/forecasts"
	"soccer-forecasts/internal/historical"
	"soccer-forecasts/lib/batch"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historicalCmd)
}

var historicalCmd = &cobra.Command{
	Use:   "historical [--competition <slug>]... [--season <year>]...",
	Short: "Rewrites the full forecast history of every configured competition and season.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config

		fetcher := historical.NewFetcher(
			forecasts.NewClient(g.Http),
			historical.Options{
				OutputDir: cfg.OutputDir,
				Workers:   cfg.Workers,
			},
		)
		return runPipeline(cmd.Context(), historical.Pipeline, func(ctx context.Context) batch.Summary {
			return fetcher.Run(ctx, cfg.Competitions, cfg.Seasons)
		})
	},
}
