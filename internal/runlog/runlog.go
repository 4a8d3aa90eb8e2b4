// Package runlog keeps a record of every pipeline run and the outcome of each of its
// tasks, so failed items can be found and re-run later.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"soccer-forecasts/internal/assert"
	"soccer-forecasts/internal/db"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/chrono"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("forecasts/runlog")

var ErrNoRuns = errors.New("no runs recorded")
var ErrRunNotFound = errors.New("run not found")

type Recorder struct {
	db   *sql.DB
	qry  *db.Queries
	time chrono.TimeAPI
}

func NewRecorder(database *sql.DB, clock chrono.TimeAPI) Recorder {
	assert.NotNil(database)
	assert.NotNil(clock)

	return Recorder{
		db:   database,
		qry:  db.New(database),
		time: clock,
	}
}

// Start records the beginning of a run and returns its id.
func (r Recorder) Start(ctx context.Context, pipeline string) (string, error) {
	ctx, span := tracer.Start(ctx, "Start")
	defer span.End()

	id, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return "", err
	}
	span.SetAttributes(attribute.String("run", id))

	err = r.qry.CreateRun(ctx, db.CreateRunParams{
		ID:        id,
		Pipeline:  pipeline,
		StartedAt: r.time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert run row")
		return "", err
	}
	return id, nil
}

// Finish stores the outcome of every task of a run and marks it as finished.
func (r Recorder) Finish(ctx context.Context, runId string, summary batch.Summary) error {
	ctx, span := tracer.Start(ctx, "Finish")
	defer span.End()

	span.SetAttributes(
		attribute.String("run", runId),
		attribute.Int("results", len(summary.Results)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := r.qry.WithTx(tx)

	for i, res := range summary.Results {
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}
		err := txqry.CreateResult(ctx, db.CreateResultParams{
			RunID:       runId,
			Position:    int64(i),
			Kind:        res.Task.Kind,
			Competition: res.Task.Competition,
			Season:      int64(res.Task.Season),
			Item:        res.Task.Item,
			Status:      string(res.Status),
			Error:       errText,
			DurationMs:  res.Duration.Milliseconds(),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert result row")
			return err
		}
	}

	err = txqry.FinishRun(ctx, db.FinishRunParams{
		ID: runId,
		FinishedAt: sql.NullInt64{
			Int64: r.time.Now().Unix(),
			Valid: true,
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update run row")
		return err
	}

	return tx.Commit()
}

// Run returns the run with the given id, or the latest run when `runId` is empty.
func (r Recorder) Run(ctx context.Context, runId string) (db.Run, error) {
	if runId == "" {
		run, err := r.qry.GetLatestRun(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return db.Run{}, ErrNoRuns
		}
		return run, err
	}

	run, err := r.qry.GetRun(ctx, runId)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Run{}, fmt.Errorf("%s: %w", runId, ErrRunNotFound)
	}
	return run, err
}

func (r Recorder) Runs(ctx context.Context, limit int) ([]db.Run, error) {
	return r.qry.ListRuns(ctx, int64(limit))
}

// Results lists the task outcomes of a run in the order the tasks were scheduled.
func (r Recorder) Results(ctx context.Context, runId string, failedOnly bool) ([]db.Result, error) {
	if failedOnly {
		return r.qry.GetRunFailures(ctx, runId)
	}
	return r.qry.GetRunResults(ctx, runId)
}
