// Package mysql provides a MySQL warehouse backend. MySQL quotes identifiers
// with backticks rather than ANSI double quotes, so the shared DDL builder
// and sqldb repository are parameterized with the helpers below.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"smartsales/internal/storage"
	"smartsales/internal/storage/sqldb"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Open connects to MySQL using a go-sql-driver DSN
// (user:pass@tcp(host:port)/dbname).
func Open(ctx context.Context, dsn string) (storage.Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql: dsn required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	// Quote through myFQN so schema-qualified tables ("db.sales") come out
	// segment-wise; plain identifiers quote identically to myIdent.
	return sqldb.New(db, myFQN), nil
}

// myIdent backtick-quotes an identifier, doubling embedded backticks.
func myIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// myFQN quotes a possibly schema-qualified name segment by segment.
func myFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i := range parts {
		parts[i] = myIdent(parts[i])
	}
	return strings.Join(parts, ".")
}
