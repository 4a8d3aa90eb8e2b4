package commands

import (
	"context"
	"fmt"
	"log/slog"
	"soccer-forecasts/cmd/forecasts-cli/globals"
	"soccer-forecasts/internal/config"
	"soccer-forecasts/internal/runlog"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/chrono"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// openRecorder opens the run log, a run log that cannot be opened is reported and
// otherwise ignored.
func openRecorder(cfg config.Config) (*runlog.Recorder, func()) {
	if cfg.RunLog.Disabled {
		return nil, func() {}
	}
	database, err := runlog.Open(runlog.Options{
		File:      cfg.RunLog.File,
		Url:       cfg.RunLog.Url,
		AuthToken: cfg.RunLog.AuthToken,
	})
	if err != nil {
		slog.Warn("run log unavailable, results will not be recorded", "err", err)
		return nil, func() {}
	}
	recorder := runlog.NewRecorder(database, chrono.NewStandardTime())
	return &recorder, func() {
		database.Close()
	}
}

// runPipeline runs a pipeline, records its results and prints a summary. The returned
// error is non-nil when any task failed.
func runPipeline(ctx context.Context, pipeline string, run func(ctx context.Context) batch.Summary) error {
	g := globals.Get(ctx)

	recorder, closeRecorder := openRecorder(g.Config)
	defer closeRecorder()

	runId := ""
	if recorder != nil {
		var err error
		runId, err = recorder.Start(ctx, pipeline)
		if err != nil {
			slog.Warn("failed to record run start", "err", err)
		}
	}

	start := time.Now()
	summary := run(ctx)
	elapsed := time.Since(start)

	if recorder != nil && runId != "" {
		// results are still worth keeping when the run was interrupted
		err := recorder.Finish(context.WithoutCancel(ctx), runId, summary)
		if err != nil {
			slog.Warn("failed to record run results", "run", runId, "err", err)
		}
	}

	printSummary(summary)
	slog.Info(
		"finished",
		"pipeline", pipeline,
		"run", runId,
		"ok", summary.Count(batch.StatusOk),
		"skipped", summary.Count(batch.StatusSkipped),
		"failed", summary.Count(batch.StatusFailed),
		"seconds", elapsed.Seconds(),
	)

	failed := summary.Count(batch.StatusFailed)
	if failed > 0 {
		if runId != "" {
			return fmt.Errorf("%d of %d tasks failed, see `forecasts-cli history --run %s --failed`", failed, len(summary.Results), runId)
		}
		return fmt.Errorf("%d of %d tasks failed", failed, len(summary.Results))
	}
	return nil
}

func printSummary(summary batch.Summary) {
	t := NewTable()
	t.SetTitle(summary.Pipeline)
	t.AppendHeader(table.Row{"Task", "Status", "Duration", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Error", WidthMax: 80},
	})
	for _, res := range summary.Results {
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}
		t.AppendRow(table.Row{
			res.Task.String(),
			string(res.Status),
			res.Duration.Round(time.Millisecond).String(),
			errText,
		})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d tasks", len(summary.Results)),
		fmt.Sprintf(
			"%d ok, %d skipped, %d failed",
			summary.Count(batch.StatusOk),
			summary.Count(batch.StatusSkipped),
			summary.Count(batch.StatusFailed),
		),
	})
	t.Render()
}
