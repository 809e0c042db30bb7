package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var sqlFiles embed.FS

// Result summarises a migration run.
type Result struct {
	Applied []int64
	Version int64
}

// Run brings the schema in db up to the newest embedded version.
func Run(ctx context.Context, db *sql.DB) (Result, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sqlFiles)
	if err != nil {
		return Result{}, fmt.Errorf("loading migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("applying migrations: %w", err)
	}

	var res Result
	for _, mr := range results {
		res.Applied = append(res.Applied, mr.Source.Version)
	}
	if res.Version, err = provider.GetDBVersion(ctx); err != nil {
		return res, fmt.Errorf("reading schema version: %w", err)
	}
	return res, nil
}
