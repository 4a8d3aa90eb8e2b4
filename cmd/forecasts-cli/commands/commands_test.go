package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"soccer-forecasts/internal/db"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRerunCommand(t *testing.T) {
	testCases := []struct {
		name     string
		result   db.Result
		expected string
	}{
		{
			name:     "historical",
			result:   db.Result{Kind: "historical", Competition: "serie-a", Season: 2017},
			expected: "forecasts-cli historical --competition serie-a --season 2017",
		},
		{
			name:     "snapshot",
			result:   db.Result{Kind: "snapshot", Competition: "mls", Season: 2018},
			expected: "forecasts-cli snapshot --competition mls",
		},
		{
			name:     "team logo",
			result:   db.Result{Kind: "team-logo", Competition: "la-liga", Item: "Real Madrid"},
			expected: "forecasts-cli logos --skip-competitions --competition la-liga",
		},
		{
			name:     "competition logo",
			result:   db.Result{Kind: "competition-logo", Competition: "la-liga"},
			expected: "forecasts-cli logos --skip-teams --competition la-liga",
		},
		{
			name:     "unknown kind",
			result:   db.Result{Kind: "something-else"},
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, rerunCommand(tc.result))
		})
	}
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forecasts.json5")
	err := os.WriteFile(path, []byte(`{competitions: ["premier-league", "la-liga", "mls"]}`), 0600)
	require.NoError(t, err)

	cfg, err := loadConfig(rootFlags{
		config:       path,
		workers:      12,
		output:       filepath.Join(dir, "out"),
		competitions: []string{"mls"},
		seasons:      []int{2017},
	})
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Workers)
	require.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	require.Equal(t, []string{"mls"}, cfg.Competitions)
	require.Equal(t, []int{2017}, cfg.Seasons)

	_, err = loadConfig(rootFlags{config: path, competitions: []string{"premier-leage"}})
	require.ErrorContains(t, err, `did you mean "premier-league"`)
}

func TestExecuteFlushesTelemetryAfterFailedRun(t *testing.T) {
	failing := &cobra.Command{
		Use:               "failing-pipeline",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("2 of 4 tasks failed")
		},
	}
	rootCmd.AddCommand(failing)
	rootCmd.SetArgs([]string{"failing-pipeline"})
	t.Cleanup(func() {
		rootCmd.RemoveCommand(failing)
		rootCmd.SetArgs(nil)
		shutdown = nil
	})

	flushed := 0
	shutdown = func(ctx context.Context) error {
		flushed++
		return nil
	}

	err := execute(context.Background())
	require.EqualError(t, err, "2 of 4 tasks failed")
	require.Equal(t, 1, flushed)
	require.Nil(t, shutdown)
}
