// Package database opens the libSQL handle shared by the store and migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"
)

const memoryPath = ":memory:"

// localPragmas tune a file or in-memory database. libSQL rejects Exec for
// PRAGMAs that return rows, so each one is run as a query and drained.
var localPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// dsn maps a configured location to a libSQL data source name. Remote
// databases (libsql://, https://, http://) pass through untouched.
func dsn(path string) (string, bool) {
	for _, scheme := range []string{"libsql://", "https://", "http://"} {
		if strings.HasPrefix(path, scheme) {
			return path, false
		}
	}
	return "file:" + path, true
}

// Open connects to path, which is a file path, ":memory:", or a remote libSQL
// URL. Local databases get WAL, a 5 s busy timeout and foreign keys; a
// missing parent directory is created.
//
// A local pool is pinned to one connection. PRAGMAs are per connection, and
// SQLite fails a deferred transaction that upgrades to a write while another
// writer holds the lock instead of waiting on busy_timeout, so writers queue
// on the pool. An in-memory database lives in a single connection anyway.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	name, local := dsn(path)
	if local && path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", name)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if local {
		db.SetMaxOpenConns(1)
	}

	if local {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	for _, p := range localPragmas {
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			return fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}
	return nil
}
