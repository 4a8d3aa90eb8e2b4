// Package snapshot follows the current season: every run appends the latest forecast of
// each competition to a per-competition table that grows over the season.
package snapshot

import (
	"context"
	"log/slog"
	"path/filepath"
	"soccer-forecasts/internal/assert"
	"soccer-forecasts/internal/forecasts"
	"soccer-forecasts/internal/table"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/chrono"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("forecasts/snapshot")

const Pipeline = "snapshot"

type Options struct {
	OutputDir string
	// Season is the starting year of the season being followed.
	Season  int
	Workers int
}

type Fetcher struct {
	client forecasts.Client
	clock  chrono.TimeAPI
	opts   Options
}

func NewFetcher(client forecasts.Client, clock chrono.TimeAPI, opts Options) Fetcher {
	assert.NotNil(clock)
	return Fetcher{client: client, clock: clock, opts: opts}
}

// Path is the file the snapshots of a competition accumulate in.
func (f Fetcher) Path(competition string) string {
	return filepath.Join(
		f.opts.OutputDir,
		"data",
		chrono.SeasonDir(f.opts.Season),
		competition+".csv",
	)
}

// BuildTable lays a snapshot out as one row per team, the team's own fields first
// followed by the fetch time and the remote update time.
func BuildTable(s forecasts.Snapshot, currentTime string) *table.Table {
	t := table.New()
	if len(s.Teams) > 0 {
		for _, field := range s.Teams[0].Fields {
			t.AddColumn(field)
		}
	}
	t.AddColumn(forecasts.ColumnCurrentTime)
	t.AddColumn(forecasts.ColumnLastUpdated)

	for _, team := range s.Teams {
		row := table.NewRecord()
		for _, field := range team.Fields {
			row.Set(field, team.Get(field))
		}
		row.Set(forecasts.ColumnCurrentTime, currentTime)
		row.Set(forecasts.ColumnLastUpdated, s.LastUpdated)
		t.Append(row)
	}
	return t
}

// Run appends the current forecast of every competition to its table. A competition
// that fails does not affect the others.
func (f Fetcher) Run(ctx context.Context, competitions []string) batch.Summary {
	// every row of a run shares the same fetch time
	now := chrono.Format(f.clock.Now())

	tasks := make([]batch.Task, len(competitions))
	for i, c := range competitions {
		tasks[i] = batch.Task{Kind: Pipeline, Competition: c, Season: f.opts.Season}
	}

	return batch.Run(ctx, Pipeline, f.opts.Workers, tasks, func(ctx context.Context, task batch.Task) error {
		return f.fetch(ctx, task.Competition, now)
	})
}

func (f Fetcher) fetch(ctx context.Context, competition, now string) error {
	ctx, span := tracer.Start(ctx, "fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("competition", competition),
		attribute.Int("season", f.opts.Season),
	)

	slog.InfoContext(ctx, "fetching forecast", "competition", competition, "season", f.opts.Season)

	body, err := f.client.Fetch(ctx, f.opts.Season, competition)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	snapshot, err := forecasts.DecodeLatest(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(snapshot.Teams) == 0 {
		slog.WarnContext(ctx, "forecast has no teams, nothing to append", "competition", competition)
		return nil
	}

	tbl := BuildTable(snapshot, now)
	path := f.Path(competition)
	mode, err := table.AppendFile(path, tbl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if mode == table.Reconciled {
		slog.WarnContext(ctx, "forecast columns changed, header rewritten", "competition", competition, "path", path)
	}

	slog.InfoContext(
		ctx, "finished fetching forecast",
		"competition", competition,
		"rows", tbl.Len(),
		"last_updated", snapshot.LastUpdated,
		"mode", mode.String(),
	)
	return nil
}
