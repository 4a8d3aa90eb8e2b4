package chrono

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the minute-precision format every timestamp column is written in.
const Layout = "2006-01-02 15:04"

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in UTC.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().UTC()
}

// FixedTime always returns the same instant, it is used to pin the clock in tests.
type FixedTime time.Time

func (f FixedTime) Now() time.Time {
	return time.Time(f)
}

// Format renders t in its own location using Layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Normalize parses a loosely formatted date/time string and renders it with Layout.
// The wall clock of the input is kept as is, an explicit offset is not converted to UTC.
func Normalize(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty timestamp")
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return "", fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return Format(t), nil
}

// SeasonDir is the directory name a season starting in `year` is stored under.
func SeasonDir(year int) string {
	return fmt.Sprintf("%d-%d", year, year+1)
}
