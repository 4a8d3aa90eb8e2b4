package forecasts

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const examplePayload = `{"forecasts":[{"last_updated":"2019-03-01T12:00:00Z","teams":[{"team":"A","pct":0.5},{"team":"B","pct":0.5}]}]}`

func TestDecodeLatest(t *testing.T) {
	snapshot, err := DecodeLatest([]byte(examplePayload))
	require.NoError(t, err)

	require.Equal(t, "2019-03-01 12:00", snapshot.LastUpdated)
	require.Len(t, snapshot.Teams, 2)
	require.Equal(t, []string{"team", "pct"}, snapshot.Teams[0].Fields)
	require.Equal(t, "A", snapshot.Teams[0].Get("team"))
	require.Equal(t, "0.5", snapshot.Teams[1].Get("pct"))
}

func TestDecodeRecordCells(t *testing.T) {
	obj := gjson.Parse(`{"name":"Athletic, Bilbao","spi":71.25,"id":93,"relegated":false,"conf":null,"tags":["a",1],"big":1e-05}`)
	r, err := DecodeRecord(obj)
	require.NoError(t, err)

	require.Equal(t, []string{"name", "spi", "id", "relegated", "conf", "tags", "big"}, r.Fields)
	require.Equal(t, "Athletic, Bilbao", r.Get("name"))
	require.Equal(t, "71.25", r.Get("spi"))
	require.Equal(t, "93", r.Get("id"))
	require.Equal(t, "false", r.Get("relegated"))
	require.Equal(t, "", r.Get("conf"))
	require.Equal(t, `["a",1]`, r.Get("tags"))
	require.Equal(t, "1e-05", r.Get("big"))

	_, err = DecodeRecord(gjson.Parse(`[1,2]`))
	require.ErrorIs(t, err, ErrSchema)
}

func TestDecodeSchemaViolations(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `<html>oops</html>`},
		{name: "no forecasts", payload: `{"teams":[]}`},
		{name: "empty forecasts", payload: `{"forecasts":[]}`},
		{name: "no teams", payload: `{"forecasts":[{"last_updated":"2019-03-01T12:00:00Z"}]}`},
		{name: "no timestamp", payload: `{"forecasts":[{"teams":[{"team":"A"}]}]}`},
		{name: "bad timestamp", payload: `{"forecasts":[{"last_updated":"whenever","teams":[]}]}`},
		{name: "inconsistent keys", payload: `{"forecasts":[{"last_updated":"2019-03-01","teams":[{"team":"A","pct":1},{"team":"B"}]}]}`},
		{name: "team not object", payload: `{"forecasts":[{"last_updated":"2019-03-01","teams":["A"]}]}`},
	}

	for _, test := range testCases {
		_, err := DecodeLatest([]byte(test.payload))
		require.ErrorIs(t, err, ErrSchema, test.name)
	}
}

func TestDecodeAll(t *testing.T) {
	payload := `{"forecasts":[
		{"last_updated":"2017-05-21T20:00:00.000Z","teams":[{"team":"A","spi":80},{"team":"B","spi":70}]},
		{"last_updated":"2017-05-14T20:00:00.000Z","teams":[{"team":"A","spi":79,"elo":1},{"team":"B","spi":71,"elo":2}]}
	]}`
	snapshots, err := DecodeAll([]byte(payload))
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Equal(t, "2017-05-21 20:00", snapshots[0].LastUpdated)
	require.Equal(t, "2017-05-14 20:00", snapshots[1].LastUpdated)
	require.Equal(t, []string{"team", "spi", "elo"}, snapshots[1].Teams[0].Fields)

	snapshots, err = DecodeAll([]byte(`{"forecasts":[]}`))
	require.NoError(t, err)
	require.Empty(t, snapshots)

	_, err = DecodeAll([]byte(`{"teams":[]}`))
	require.ErrorIs(t, err, ErrSchema)
}

func TestDecodeLastUpdatedFallback(t *testing.T) {
	payload := `{"forecasts":[{"updated":"2016-08-13T11:30:00Z","teams":[{"team":"A"}]}]}`
	snapshot, err := DecodeLatest([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, "2016-08-13 11:30", snapshot.LastUpdated)
}

func TestDecodeEmptyTeams(t *testing.T) {
	snapshot, err := DecodeLatest([]byte(`{"forecasts":[{"last_updated":"2019-03-01","teams":[]}]}`))
	require.NoError(t, err)
	require.Len(t, snapshot.Teams, 0)
	require.Equal(t, "2019-03-01 00:00", snapshot.LastUpdated)
}
