package historical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"soccer-forecasts/internal/forecasts"
	"soccer-forecasts/lib/batch"
	"soccer-forecasts/lib/restyutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const payload2017 = `{"forecasts":[
	{"last_updated":"2018-05-13T16:00:00Z","teams":[{"team":"A","spi":80.1},{"team":"B","spi":70}]},
	{"last_updated":"2018-05-06T16:00:00Z","teams":[{"team":"A","spi":79.5,"relegated":false},{"team":"B","spi":71,"relegated":true}]}
]}`

func newTestFetcher(t *testing.T, outputDir string) Fetcher {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/forecasts/2017_premier-league_forecast.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload2017))
	})
	mux.HandleFunc("/forecasts/2017_la-liga_forecast.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := forecasts.NewClient(restyutil.NewClient(restyutil.ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	}))
	return NewFetcher(client, Options{OutputDir: outputDir, Workers: 3})
}

func TestFetcherRunWritesFullHistory(t *testing.T) {
	dir := t.TempDir()
	fetcher := newTestFetcher(t, dir)
	ctx := context.Background()

	summary := fetcher.Run(ctx, []string{"premier-league"}, []int{2017})
	require.NoError(t, summary.Err())

	path := filepath.Join(dir, "data", "2017-2018", "premier-league.csv")
	require.Equal(t, path, fetcher.Path("premier-league", 2017))

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(
		t,
		"team,spi,last_updated,relegated\n"+
			"A,80.1,2018-05-13 16:00,\n"+
			"B,70,2018-05-13 16:00,\n"+
			"A,79.5,2018-05-06 16:00,false\n"+
			"B,71,2018-05-06 16:00,true\n",
		string(first),
	)

	summary = fetcher.Run(ctx, []string{"premier-league"}, []int{2017})
	require.NoError(t, summary.Err())

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestFetcherRunSkipsMissingSeasons(t *testing.T) {
	dir := t.TempDir()
	fetcher := newTestFetcher(t, dir)

	summary := fetcher.Run(
		context.Background(),
		[]string{"premier-league", "la-liga"},
		[]int{2016, 2017},
	)
	require.Len(t, summary.Results, 4)

	testCases := []struct {
		competition string
		season      int
		status      batch.Status
	}{
		{"premier-league", 2016, batch.StatusSkipped},
		{"premier-league", 2017, batch.StatusOk},
		{"la-liga", 2016, batch.StatusSkipped},
		{"la-liga", 2017, batch.StatusFailed},
	}
	for i, tc := range testCases {
		res := summary.Results[i]
		require.Equal(t, tc.competition, res.Task.Competition)
		require.Equal(t, tc.season, res.Task.Season)
		require.Equal(t, tc.status, res.Status, res.Task.String())
	}

	require.ErrorIs(t, summary.Results[0].Err, forecasts.ErrNotFound)
	require.Error(t, summary.Err())
	require.Len(t, summary.Failed(), 1)

	require.NoFileExists(t, fetcher.Path("premier-league", 2016))
	require.NoFileExists(t, fetcher.Path("la-liga", 2016))
	require.NoFileExists(t, fetcher.Path("la-liga", 2017))
	require.NoDirExists(t, filepath.Join(dir, "data", "2016-2017"))
}

func TestBuildTableEmptySeason(t *testing.T) {
	tbl := BuildTable([]forecasts.Snapshot{{LastUpdated: "2018-05-13 16:00"}})
	require.Equal(t, 0, tbl.Len())
	require.Equal(t, []string{"last_updated"}, tbl.Columns())

	tbl = BuildTable(nil)
	require.Equal(t, 0, tbl.Len())
	require.Equal(t, []string{"last_updated"}, tbl.Columns())
}

func TestBuildTableLeadingEmptySnapshot(t *testing.T) {
	snapshots, err := forecasts.DecodeAll([]byte(`{"forecasts":[
		{"last_updated":"2018-05-20","teams":[]},
		{"last_updated":"2018-05-13","teams":[{"team":"A","spi":1}]}
	]}`))
	require.NoError(t, err)

	tbl := BuildTable(snapshots)
	require.Equal(t, []string{"team", "spi", "last_updated"}, tbl.Columns())
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, "2018-05-13 00:00", tbl.Record(0).Get("last_updated"))
}

func TestFetcherRunEmptyForecasts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forecasts/2016_mls_forecast.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"forecasts":[]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := forecasts.NewClient(restyutil.NewClient(restyutil.ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	}))
	dir := t.TempDir()
	fetcher := NewFetcher(client, Options{OutputDir: dir, Workers: 1})

	summary := fetcher.Run(context.Background(), []string{"mls"}, []int{2016})
	require.NoError(t, summary.Err())
	require.Equal(t, batch.StatusOk, summary.Results[0].Status)

	content, err := os.ReadFile(fetcher.Path("mls", 2016))
	require.NoError(t, err)
	require.Equal(t, "last_updated\n", string(content))
}
