package forecasts

import (
	"errors"
	"fmt"
	"soccer-forecasts/internal/table"
	"soccer-forecasts/lib/chrono"

	"github.com/tidwall/gjson"
)

// ErrSchema is returned when a payload lacks a field the fetchers depend on, or when the
// teams of one snapshot disagree on their fields.
var ErrSchema = errors.New("unexpected forecast schema")

// Snapshot is one forecast read at one point in time.
type Snapshot struct {
	// LastUpdated is the remote freshness time formatted with chrono.Layout.
	LastUpdated string
	Teams       []table.Record
}

func schemaError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// cell renders a json value the way it is written to a csv cell.
func cell(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return value.Str
	default:
		// numbers keep their literal text, booleans are true/false, nested
		// arrays and objects are kept as raw json
		return value.Raw
	}
}

// DecodeRecord turns a json object into a record, keeping the key order of the document.
func DecodeRecord(obj gjson.Result) (table.Record, error) {
	if !obj.IsObject() {
		return table.Record{}, schemaError("expected an object, got %s", obj.Type)
	}
	r := table.NewRecord()
	obj.ForEach(func(key, value gjson.Result) bool {
		r.Set(key.String(), cell(value))
		return true
	})
	return r, nil
}

func lastUpdated(obj gjson.Result) (string, error) {
	value := obj.Get("last_updated")
	if !value.Exists() {
		// older payloads lead with the timestamp under a different key
		obj.ForEach(func(_, v gjson.Result) bool {
			value = v
			return false
		})
	}
	if value.Type != gjson.String {
		return "", schemaError("snapshot has no last_updated timestamp")
	}
	normalized, err := chrono.Normalize(value.Str)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return normalized, nil
}

// DecodeSnapshot decodes one element of the `forecasts` array.
func DecodeSnapshot(obj gjson.Result) (Snapshot, error) {
	if !obj.IsObject() {
		return Snapshot{}, schemaError("forecast entry is not an object")
	}

	updated, err := lastUpdated(obj)
	if err != nil {
		return Snapshot{}, err
	}

	teams := obj.Get("teams")
	if !teams.IsArray() {
		return Snapshot{}, schemaError("forecast entry has no teams array")
	}

	snapshot := Snapshot{LastUpdated: updated}
	for i, t := range teams.Array() {
		r, err := DecodeRecord(t)
		if err != nil {
			return Snapshot{}, fmt.Errorf("team %d: %w", i, err)
		}
		if i > 0 && !r.SameFields(snapshot.Teams[0]) {
			return Snapshot{}, schemaError(
				"team %d has fields %v, team 0 has %v",
				i, r.Fields, snapshot.Teams[0].Fields,
			)
		}
		snapshot.Teams = append(snapshot.Teams, r)
	}
	return snapshot, nil
}

func forecastsArray(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, schemaError("response is not valid json")
	}
	forecasts := gjson.GetBytes(body, "forecasts")
	if !forecasts.IsArray() {
		return nil, schemaError("response has no forecasts array")
	}
	return forecasts.Array(), nil
}

// DecodeLatest decodes only the first, most recent, snapshot of a forecast payload.
func DecodeLatest(body []byte) (Snapshot, error) {
	entries, err := forecastsArray(body)
	if err != nil {
		return Snapshot{}, err
	}
	if len(entries) == 0 {
		return Snapshot{}, schemaError("forecasts array is empty")
	}
	return DecodeSnapshot(entries[0])
}

// DecodeAll decodes every snapshot of a forecast payload, in document order. An empty
// forecasts array yields no snapshots.
func DecodeAll(body []byte) ([]Snapshot, error) {
	entries, err := forecastsArray(body)
	if err != nil {
		return nil, err
	}
	snapshots := make([]Snapshot, 0, len(entries))
	for i, e := range entries {
		s, err := DecodeSnapshot(e)
		if err != nil {
			return nil, fmt.Errorf("forecast %d: %w", i, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

const (
	// ColumnCurrentTime holds the time the snapshot fetcher ran.
	ColumnCurrentTime = "current_time"
	// ColumnLastUpdated holds the time the site last refreshed the forecast.
	ColumnLastUpdated = "last_updated"
)
