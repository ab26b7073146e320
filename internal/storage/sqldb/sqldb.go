// Package sqldb implements storage.Repository on top of database/sql for the
// dialects that share "?" placeholders (sqlite, mysql). Backend subpackages
// supply the driver connection and identifier quoting.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smartsales/internal/schema"
	"smartsales/pkg/records"
)

// Repo is a database/sql-backed repository.
type Repo struct {
	db    *sql.DB
	quote schema.QuoteFn
}

// New wraps an open connection. quote defaults to ANSI double quotes.
func New(db *sql.DB, quote schema.QuoteFn) *Repo {
	if quote == nil {
		quote = schema.AnsiQuote
	}
	return &Repo{db: db, quote: quote}
}

// Exec runs a single DDL or maintenance statement.
func (r *Repo) Exec(ctx context.Context, query string) error {
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Insert appends rows inside one transaction using a prepared single-row
// statement. Constraint violations abort the whole chunk and roll back.
func (r *Repo) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = r.quote(c)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.quote(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare: %w", err)
	}
	var n int64
	for _, row := range rows {
		if len(row) != len(columns) {
			stmt.Close()
			tx.Rollback()
			return 0, fmt.Errorf("row has %d values, want %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, err
		}
		n++
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// IntSet reads the distinct integer values of one column. NULLs are skipped;
// key columns are NOT NULL by schema, so this only matters for ad-hoc use.
func (r *Repo) IntSet(ctx context.Context, table, column string) (map[int64]struct{}, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s", r.quote(column), r.quote(table))
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	out := map[int64]struct{}{}
	for rows.Next() {
		var v sql.NullInt64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s.%s: %w", table, column, err)
		}
		if v.Valid {
			out[v.Int64] = struct{}{}
		}
	}
	return out, rows.Err()
}

// Select runs an ad-hoc query and materializes the result. Driver []byte
// values are normalized to string so records behave identically across
// dialects.
func (r *Repo) Select(ctx context.Context, query string) ([]string, []records.Record, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}

	var out []records.Record
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = normalize(values[i])
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Quote implements storage.Repository.
func (r *Repo) Quote(ident string) string { return r.quote(ident) }

// Close releases the underlying connection pool.
func (r *Repo) Close() error { return r.db.Close() }
