package runlog

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"soccer-forecasts/internal/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Options selects where the run log lives, a remote libsql database when Url is set and
// a local sqlite file otherwise.
type Options struct {
	File      string
	Url       string
	AuthToken string
}

func wrapOpen(err error) error {
	return fmt.Errorf("open run log: %w", err)
}

// Open opens the run log database and creates its tables if they do not exist yet.
func Open(opts Options) (*sql.DB, error) {
	var database *sql.DB
	var err error
	if opts.Url != "" {
		database, err = openRemote(opts.Url, opts.AuthToken)
	} else {
		database, err = openFile(opts.File)
	}
	if err != nil {
		return nil, wrapOpen(err)
	}

	_, err = database.Exec(db.Schema)
	if err != nil {
		database.Close()
		return nil, wrapOpen(err)
	}
	return database, nil
}

func openRemote(dbUrl, authToken string) (*sql.DB, error) {
	values := url.Values{}
	if authToken != "" {
		values.Add("authToken", authToken)
	}
	return sql.Open("libsql", dbUrl+"?"+values.Encode())
}

func openFile(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
