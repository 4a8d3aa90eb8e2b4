package commands

import (
	"context"
	"soccer-forecasts/cmd/forecasts-cli/globals"
	"soccer-forecasts/internal/forecasts"
	"soccer-forecasts/internal/snapshot"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/chrono"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [--competition <slug>]...",
	Short: "Appends the latest forecast of the current season to each competition's csv.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config

		fetcher := snapshot.NewFetcher(
			forecasts.NewClient(g.Http),
			chrono.NewStandardTime(),
			snapshot.Options{
				OutputDir: cfg.OutputDir,
				Season:    cfg.CurrentSeason,
				Workers:   cfg.Workers,
			},
		)
		return runPipeline(cmd.Context(), snapshot.Pipeline, func(ctx context.Context) batch.Summary {
			return fetcher.Run(ctx, cfg.Competitions)
		})
	},
}
