// Package sqlite provides the default warehouse backend, a single local file
// via the pure-Go modernc driver. The adapter registers itself with the
// storage factory; callers blank-import this package and open repositories
// through storage.New.
//
// Foreign keys are OFF by default in sqlite, so the pragma is enabled on
// every open; without it referential integrity would rest solely on the
// loader's pre-filtering.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"smartsales/internal/storage"
	"smartsales/internal/storage/sqldb"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Open connects to the sqlite database at dsn (a path or file: URI) and
// applies the warehouse pragmas.
func Open(ctx context.Context, dsn string) (storage.Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: dsn required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// Single writer per run; a second connection would only reintroduce
	// locking surprises.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return sqldb.New(db, nil), nil
}
