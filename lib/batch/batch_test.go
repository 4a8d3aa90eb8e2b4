package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range n {
		tasks[i] = Task{Kind: "test", Competition: fmt.Sprintf("c%d", i), Season: 2000 + i}
	}
	return tasks
}

func TestRunIsolatesFailures(t *testing.T) {
	tasks := makeTasks(6)
	summary := Run(context.Background(), "test", 3, tasks, func(ctx context.Context, task Task) error {
		switch task.Competition {
		case "c1":
			return fmt.Errorf("remote said no")
		case "c2":
			return fmt.Errorf("not there: %w", ErrSkipped)
		case "c4":
			panic("malformed page")
		}
		return nil
	})

	require.Equal(t, "test", summary.Pipeline)
	require.Len(t, summary.Results, 6)
	for i, r := range summary.Results {
		require.Equal(t, tasks[i], r.Task)
	}

	require.Equal(t, StatusOk, summary.Results[0].Status)
	require.Equal(t, StatusFailed, summary.Results[1].Status)
	require.Equal(t, StatusSkipped, summary.Results[2].Status)
	require.Equal(t, StatusOk, summary.Results[3].Status)
	require.Equal(t, StatusFailed, summary.Results[4].Status)
	require.Equal(t, StatusOk, summary.Results[5].Status)

	require.Equal(t, 3, summary.Count(StatusOk))
	require.Equal(t, 1, summary.Count(StatusSkipped))
	require.Len(t, summary.Failed(), 2)

	err := summary.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "test c1 2001: remote said no")
	require.Contains(t, err.Error(), "panic: malformed page")
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	summary := Run(context.Background(), "test", 2, makeTasks(10), func(ctx context.Context, task Task) error {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(time.Millisecond * 10)
		inFlight.Add(-1)
		return nil
	})

	require.Equal(t, 10, summary.Count(StatusOk))
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.NoError(t, summary.Err())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	summary := Run(ctx, "test", 1, makeTasks(3), func(ctx context.Context, task Task) error {
		calls.Add(1)
		return nil
	})

	require.EqualValues(t, 0, calls.Load())
	require.Len(t, summary.Failed(), 3)
	for _, r := range summary.Results {
		require.True(t, errors.Is(r.Err, context.Canceled))
	}
}

func TestTaskString(t *testing.T) {
	require.Equal(t, "logo premier-league (Arsenal)", Task{Kind: "logo", Competition: "premier-league", Item: "Arsenal"}.String())
	require.Equal(t, "historical la-liga 2017", Task{Kind: "historical", Competition: "la-liga", Season: 2017}.String())
}

func TestSummaryMerge(t *testing.T) {
	a := Summary{Pipeline: "logos", Results: []Result{{Status: StatusOk}}}
	b := Summary{Pipeline: "logos", Results: []Result{{Status: StatusFailed, Err: errors.New("x")}}}
	merged := a.Merge(b)
	require.Len(t, merged.Results, 2)
	require.Len(t, a.Results, 1)
}
