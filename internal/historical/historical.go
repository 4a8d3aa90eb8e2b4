// Package historical rebuilds the full forecast history of past seasons, one table per
// competition and season. Reruns overwrite the previous output.
package historical

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"soccer-forecasts/internal/forecasts"
	"soccer-forecasts/internal/table"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/chrono"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("forecasts/historical")

const Pipeline = "historical"

type Options struct {
	OutputDir string
	Workers   int
}

type Fetcher struct {
	client forecasts.Client
	opts   Options
}

func NewFetcher(client forecasts.Client, opts Options) Fetcher {
	return Fetcher{client: client, opts: opts}
}

func (f Fetcher) Path(competition string, season int) string {
	return filepath.Join(
		f.opts.OutputDir,
		"data",
		chrono.SeasonDir(season),
		competition+".csv",
	)
}

// BuildTable flattens every snapshot of a season into rows, each team row tagged with
// the update time of the snapshot it came from. Snapshots keep their document order.
// Snapshots without teams contribute no columns.
func BuildTable(snapshots []forecasts.Snapshot) *table.Table {
	out := table.New()
	for _, s := range snapshots {
		if len(s.Teams) == 0 {
			continue
		}
		part := table.New()
		for _, field := range s.Teams[0].Fields {
			part.AddColumn(field)
		}
		part.AddColumn(forecasts.ColumnLastUpdated)

		for _, team := range s.Teams {
			row := table.NewRecord()
			for _, field := range team.Fields {
				row.Set(field, team.Get(field))
			}
			row.Set(forecasts.ColumnLastUpdated, s.LastUpdated)
			part.Append(row)
		}
		out.Concat(part)
	}
	out.AddColumn(forecasts.ColumnLastUpdated)
	return out
}

// Tasks expands competitions and seasons into one task per pair.
func Tasks(competitions []string, seasons []int) []batch.Task {
	tasks := make([]batch.Task, 0, len(competitions)*len(seasons))
	for _, c := range competitions {
		for _, season := range seasons {
			tasks = append(tasks, batch.Task{Kind: Pipeline, Competition: c, Season: season})
		}
	}
	return tasks
}

// Run writes the full history of every (competition, season) pair. Pairs the site has
// no forecast for are skipped and leave no file behind.
func (f Fetcher) Run(ctx context.Context, competitions []string, seasons []int) batch.Summary {
	return batch.Run(
		ctx, Pipeline, f.opts.Workers,
		Tasks(competitions, seasons),
		func(ctx context.Context, task batch.Task) error {
			return f.fetch(ctx, task.Competition, task.Season)
		},
	)
}

func (f Fetcher) fetch(ctx context.Context, competition string, season int) error {
	ctx, span := tracer.Start(ctx, "fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("competition", competition),
		attribute.Int("season", season),
	)

	slog.InfoContext(ctx, "fetching history", "competition", competition, "season", season)

	body, err := f.client.Fetch(ctx, season, competition)
	if errors.Is(err, forecasts.ErrNotFound) {
		slog.InfoContext(ctx, "no forecast for season", "competition", competition, "season", season)
		return fmt.Errorf("%w: %w", batch.ErrSkipped, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	snapshots, err := forecasts.DecodeAll(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	tbl := BuildTable(snapshots)
	path := f.Path(competition, season)
	err = table.WriteFile(path, tbl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	slog.InfoContext(
		ctx, "finished fetching history",
		"competition", competition,
		"season", season,
		"snapshots", len(snapshots),
		"rows", tbl.Len(),
	)
	return nil
}
