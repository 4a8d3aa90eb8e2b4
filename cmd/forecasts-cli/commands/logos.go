package commands

import (
	"context"
	"soccer-forecasts/cmd/forecasts-cli/globals"
	"soccer-forecasts/internal/logos"
	"soccer-forecasts/lib/batch"

	"github.com/spf13/cobra"
)

var logosOpts logos.RunOptions

func init() {
	logosCmd.Flags().BoolVar(&logosOpts.SkipTeams, "skip-teams", false, "Only download competition logos.")
	logosCmd.Flags().BoolVar(&logosOpts.SkipCompetitions, "skip-competitions", false, "Only download team logos.")
	logosCmd.MarkFlagsMutuallyExclusive("skip-teams", "skip-competitions")
	rootCmd.AddCommand(logosCmd)
}

var logosCmd = &cobra.Command{
	Use:   "logos [--skip-teams | --skip-competitions]",
	Short: "Downloads the team logos listed on each competition's page and the competition logos.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config

		downloader := logos.NewDownloader(g.Http, logos.Options{
			OutputDir:      cfg.OutputDir,
			Workers:        cfg.Workers,
			PlaceholderUrl: cfg.Logos.PlaceholderUrl,
			ErrorSentinel:  cfg.Logos.ErrorSentinel,
			LowResToken:    cfg.Logos.LowResToken,
			HighResToken:   cfg.Logos.HighResToken,
		})
		return runPipeline(cmd.Context(), logos.Pipeline, func(ctx context.Context) batch.Summary {
			return downloader.Run(ctx, cfg.Competitions, logosOpts)
		})
	},
}
