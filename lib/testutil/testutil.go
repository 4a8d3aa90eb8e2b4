package testutil

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/mazen160/go-random"

	_ "modernc.org/sqlite"
)

// SetupDB opens an in-memory sqlite database with `schema` applied, it is closed when
// the test ends.
func SetupDB(t testing.TB, schema string) *sql.DB {
	t.Helper()

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a different database
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlite.Close()
	})

	_, err = sqlite.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	return sqlite
}

// RandomName returns `prefix` followed by a few random characters.
func RandomName(t testing.TB, prefix string) string {
	t.Helper()

	suffix, err := random.String(6)
	if err != nil {
		t.Fatal(err)
	}
	return prefix + "-" + strings.ToLower(suffix)
}
