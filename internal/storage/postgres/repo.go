// Package postgres provides a Postgres warehouse backend on pgx. Bulk
// insertion goes through the COPY protocol, which is substantially faster
// than multi-row INSERT for full reloads. The adapter registers itself with
// the storage factory at init time.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartsales/internal/schema"
	"smartsales/internal/storage"
	"smartsales/pkg/records"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Repo is a pgxpool-backed repository.
type Repo struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (storage.Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pgxpool: dsn required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgxpool: ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

// Exec runs one DDL or maintenance statement.
func (r *Repo) Exec(ctx context.Context, query string) error {
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Insert bulk-loads rows via COPY.
func (r *Repo) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// IntSet reads the distinct integer values of one column.
func (r *Repo) IntSet(ctx context.Context, table, column string) (map[int64]struct{}, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s", schema.AnsiQuote(column), pgFQN(table))
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	out := map[int64]struct{}{}
	for rows.Next() {
		var v *int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s.%s: %w", table, column, err)
		}
		if v != nil {
			out[*v] = struct{}{}
		}
	}
	return out, rows.Err()
}

// Select runs an ad-hoc query and materializes the result.
func (r *Repo) Select(ctx context.Context, query string) ([]string, []records.Record, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out []records.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
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

// normalize reconciles pgx value types with the record conventions used by
// the sqlite/mysql backends (int64, float64, string, nil).
func normalize(v any) any {
	switch t := v.(type) {
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case []byte:
		return string(t)
	default:
		return v
	}
}

// Quote implements storage.Repository.
func (r *Repo) Quote(ident string) string { return schema.AnsiQuote(ident) }

// Close releases the pool.
func (r *Repo) Close() error {
	r.pool.Close()
	return nil
}

// splitFQN converts "public.sales" into a pgx.Identifier{"public","sales"}.
func splitFQN(fqn string) pgx.Identifier {
	return pgx.Identifier(strings.Split(fqn, "."))
}

// pgFQN quotes a possibly schema-qualified name segment by segment.
func pgFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i := range parts {
		parts[i] = schema.AnsiQuote(parts[i])
	}
	return strings.Join(parts, ".")
}
