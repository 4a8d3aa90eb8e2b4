// Package batch runs independent fetch-and-persist tasks on a bounded worker pool and
// keeps the outcome of each task separate from every other.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var meter = otel.Meter("forecasts/batch")
var taskCounter, _ = meter.Int64Counter("batch.tasks")
var taskDuration, _ = meter.Float64Histogram("batch.task_duration", metric.WithUnit("s"))

type Status string

const (
	StatusOk      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// ErrSkipped is returned (possibly wrapped) by a task that reached an expected terminal
// state without doing any work, it is reported as skipped instead of failed.
var ErrSkipped = errors.New("skipped")

// Task identifies one unit of work, it carries enough context to re-run just that item.
type Task struct {
	Kind        string
	Competition string
	// Season is the starting year of the season, 0 when the task is not season bound.
	Season int
	// Item further identifies the task within a competition, e.g. a team name.
	Item string
}

func (t Task) String() string {
	out := t.Kind
	if t.Competition != "" {
		out += " " + t.Competition
	}
	if t.Season != 0 {
		out += " " + strconv.Itoa(t.Season)
	}
	if t.Item != "" {
		out += fmt.Sprintf(" (%s)", t.Item)
	}
	return out
}

// LogAttrs returns the task identity as slog key/value pairs.
func (t Task) LogAttrs() []any {
	attrs := []any{"kind", t.Kind}
	if t.Competition != "" {
		attrs = append(attrs, "competition", t.Competition)
	}
	if t.Season != 0 {
		attrs = append(attrs, "season", t.Season)
	}
	if t.Item != "" {
		attrs = append(attrs, "item", t.Item)
	}
	return attrs
}

type Result struct {
	Task     Task
	Status   Status
	Err      error
	Duration time.Duration
}

type Summary struct {
	Pipeline string
	Results  []Result
}

func (s Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

// Err joins the errors of all failed tasks, it is nil when nothing failed.
func (s Summary) Err() error {
	var errs []error
	for _, r := range s.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", r.Task, r.Err))
	}
	return errors.Join(errs...)
}

// Merge appends the results of other summaries to s.
func (s Summary) Merge(others ...Summary) Summary {
	for _, o := range others {
		s.Results = append(s.Results, o.Results...)
	}
	return s
}

// TaskFunc performs a single task. Returning an error wrapping ErrSkipped marks the
// task as skipped.
type TaskFunc func(ctx context.Context, task Task) error

// Run executes fn for every task with at most `workers` tasks in flight. Every task gets
// a result, in the same order as `tasks`, no matter how other tasks end.
func Run(ctx context.Context, pipeline string, workers int, tasks []Task, fn TaskFunc) Summary {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(tasks))
	g := errgroup.Group{}
	g.SetLimit(workers)

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Task: task, Status: StatusFailed, Err: err}
			record(ctx, pipeline, results[i])
			continue
		}

		g.Go(func() error {
			results[i] = execute(ctx, task, fn)
			record(ctx, pipeline, results[i])
			return nil
		})
	}

	// tasks never return an error to the group
	_ = g.Wait()

	return Summary{Pipeline: pipeline, Results: results}
}

func execute(ctx context.Context, task Task, fn TaskFunc) (res Result) {
	res.Task = task
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("panic: %v", r)
			slog.ErrorContext(ctx, "task panicked", "stack", string(debug.Stack()))
		}
	}()

	err := fn(ctx, task)
	switch {
	case err == nil:
		res.Status = StatusOk
	case errors.Is(err, ErrSkipped):
		res.Status = StatusSkipped
		res.Err = err
	default:
		res.Status = StatusFailed
		res.Err = err
	}
	return res
}

func record(ctx context.Context, pipeline string, res Result) {
	attrs := metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", string(res.Status)),
	)
	taskCounter.Add(ctx, 1, attrs)
	taskDuration.Record(ctx, res.Duration.Seconds(), attrs)

	switch res.Status {
	case StatusFailed:
		slog.ErrorContext(ctx, "task failed", append(res.Task.LogAttrs(), "err", res.Err)...)
	case StatusSkipped:
		slog.DebugContext(ctx, "task skipped", append(res.Task.LogAttrs(), "reason", res.Err)...)
	}
}
