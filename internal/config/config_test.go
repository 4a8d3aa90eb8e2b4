package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultPath))
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.BypassCloudflare())
	require.Len(t, cfg.Competitions, 26)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	err := os.WriteFile(path, []byte(`{
		competitions: ["premier-league", "la-liga"],
		seasons: [2017],
		workers: 8,
		http: {
			timeout: "5s",
			retry_wait: 250,
			bypass_cloudflare: false,
		},
	}`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"premier-league", "la-liga"}, cfg.Competitions)
	require.Equal(t, []int{2017}, cfg.Seasons)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, Duration(time.Second*5), cfg.Http.Timeout)
	require.Equal(t, Duration(time.Millisecond*250), cfg.Http.RetryWait)
	require.False(t, cfg.BypassCloudflare())

	// untouched fields come from the defaults
	require.Equal(t, Defaults().BaseUrl, cfg.BaseUrl)
	require.Equal(t, 2018, cfg.CurrentSeason)
	require.Equal(t, Defaults().Logos, cfg.Logos)
	require.Equal(t, 2, cfg.Http.RetryCount)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Competitions = nil
	cfg.Seasons = []int{2016, -1}
	cfg.Workers = 0
	cfg.BaseUrl = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one competition")
	require.Contains(t, err.Error(), "invalid season -1")
	require.Contains(t, err.Error(), "workers must be at least 1")
	require.Contains(t, err.Error(), "base_url")
}

func TestUnknownCompetitions(t *testing.T) {
	cfg := Defaults()
	cfg.Competitions = []string{"premier-league", "bundesliga-3", "la-ligaa", "mls-next-pro-xyz"}

	unknown := cfg.UnknownCompetitions()
	require.Len(t, unknown, 3)
	require.Equal(t, "la-liga", unknown["la-ligaa"])
	require.Contains(t, []string{"bundesliga", "bundesliga-2"}, unknown["bundesliga-3"])
	require.NotContains(t, unknown, "premier-league")
}

func TestFilter(t *testing.T) {
	cfg := Defaults()

	filtered, err := cfg.Filter([]string{"serie-a"}, []int{2017})
	require.NoError(t, err)
	require.Equal(t, []string{"serie-a"}, filtered.Competitions)
	require.Equal(t, []int{2017}, filtered.Seasons)
	require.Len(t, cfg.Competitions, 26)

	same, err := cfg.Filter(nil, nil)
	require.NoError(t, err)
	require.Equal(t, cfg, same)

	_, err = cfg.Filter([]string{"seria-a"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), `did you mean "serie-a"`)
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	require.Equal(t, Duration(time.Second*90), d)
	require.NoError(t, d.UnmarshalJSON([]byte(`1500`)))
	require.Equal(t, Duration(time.Millisecond*1500), d)
	require.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.RunLog.AuthToken = "secret-token"
	cfg.Telemetry.Otlp.Traces.Headers = map[string]string{"authorization": "Bearer abc"}

	out := cfg.Redacted()
	require.Equal(t, "<redacted>", out.RunLog.AuthToken)
	require.Equal(t, "<redacted>", out.Telemetry.Otlp.Traces.Headers["authorization"])
	require.Nil(t, out.Telemetry.Otlp.Metrics.Headers)

	// the original is left untouched
	require.Equal(t, "secret-token", cfg.RunLog.AuthToken)
	require.Equal(t, "Bearer abc", cfg.Telemetry.Otlp.Traces.Headers["authorization"])
}
