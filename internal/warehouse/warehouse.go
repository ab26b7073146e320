// Package warehouse owns the loaded relational model: destructive schema
// reset, dependency-ordered loading with referential pre-filtering, and the
// read paths the cube stage uses. It speaks to the store only through
// storage.Repository, so every backend behaves identically.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"smartsales/internal/datedim"
	"smartsales/internal/normalize"
	"smartsales/internal/schema"
	"smartsales/internal/storage"
	"smartsales/pkg/records"
)

// Inputs carries the normalized tables for one full load, in the shape each
// stage produced them.
type Inputs struct {
	Dates     []datedim.Row
	Customers []records.Record
	Products  []records.Record
	Sales     []records.Record
}

// LoadStats reports what one load cycle persisted and what the referential
// pre-filter excluded. Counts are returned, not just logged.
type LoadStats struct {
	Dates         int64
	Customers     int64
	Products      int64
	Sales         int64
	SalesFiltered int // fact rows dropped for unknown customer/product keys
}

// Loader performs full reload cycles against one repository.
type Loader struct {
	repo      storage.Repository
	log       *slog.Logger
	batchSize int
}

// NewLoader wraps a repository. log may be nil.
func NewLoader(repo storage.Repository, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{repo: repo, log: log, batchSize: storage.DefaultBatchSize}
}

// SetBatchSize overrides the insert chunk size; non-positive values are
// ignored and the default stays in effect.
func (l *Loader) SetBatchSize(n int) {
	if n > 0 {
		l.batchSize = n
	}
}

// Reset drops and recreates all warehouse tables. Drops run in reverse
// dependency order so foreign keys never dangle mid-reset; creates run in
// dependency order. This is the full-reload model: after Reset the warehouse
// is empty, and a failed subsequent load leaves no stale rows behind.
func (l *Loader) Reset(ctx context.Context) error {
	tables := schema.LoadOrder()
	for i := len(tables) - 1; i >= 0; i-- {
		stmt := schema.BuildDropTableSQL(tables[i].Name, l.repo.Quote)
		if err := l.repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop %s: %w", tables[i].Name, err)
		}
	}
	for _, t := range tables {
		stmt, err := schema.BuildCreateTableSQL(t, l.repo.Quote)
		if err != nil {
			return fmt.Errorf("build DDL for %s: %w", t.Name, err)
		}
		if err := l.repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}
	}
	l.log.Info("schema reset", slog.Int("tables", len(tables)))
	return nil
}

// Load persists the normalized inputs in dependency order: date dimension,
// customers, products, then sales. Before inserting sales it re-reads the
// persisted customer and product key sets from the store (not the in-memory
// frames) and drops fact rows referencing unknown keys; the drop count is
// logged and returned. Any store failure aborts the load.
func (l *Loader) Load(ctx context.Context, in Inputs) (LoadStats, error) {
	var stats LoadStats
	var err error

	stats.Dates, err = storage.InsertBatches(ctx, l.repo, "dim_date",
		datedim.Columns(), datedim.Rows(in.Dates), l.batchSize, l.log)
	if err != nil {
		return stats, fmt.Errorf("load dim_date: %w", err)
	}

	customers := schema.Customers()
	stats.Customers, err = storage.InsertBatches(ctx, l.repo, customers.Name,
		customers.Columns(), normalize.Rows(in.Customers, customers), l.batchSize, l.log)
	if err != nil {
		return stats, fmt.Errorf("load customer: %w", err)
	}

	products := schema.Products()
	stats.Products, err = storage.InsertBatches(ctx, l.repo, products.Name,
		products.Columns(), normalize.Rows(in.Products, products), l.batchSize, l.log)
	if err != nil {
		return stats, fmt.Errorf("load product: %w", err)
	}

	facts, filtered, err := l.filterSales(ctx, in.Sales)
	if err != nil {
		return stats, err
	}
	stats.SalesFiltered = filtered
	if filtered > 0 {
		l.log.Warn("sales rows dropped by referential pre-filter",
			slog.Int("dropped", filtered))
	}

	sales := schema.Sales()
	stats.Sales, err = storage.InsertBatches(ctx, l.repo, sales.Name,
		sales.Columns(), normalize.Rows(facts, sales), l.batchSize, l.log)
	if err != nil {
		return stats, fmt.Errorf("load sales: %w", err)
	}

	l.log.Info("load complete",
		slog.Int64("dim_date", stats.Dates),
		slog.Int64("customer", stats.Customers),
		slog.Int64("product", stats.Products),
		slog.Int64("sales", stats.Sales))
	return stats, nil
}

// filterSales keeps only fact rows whose customer_id and product_id exist in
// the already persisted dimension tables. The key sets come from the store so
// the check reflects what actually landed, regardless of how the in-memory
// frames were produced.
func (l *Loader) filterSales(ctx context.Context, sales []records.Record) ([]records.Record, int, error) {
	customerIDs, err := l.repo.IntSet(ctx, "customer", "customer_id")
	if err != nil {
		return nil, 0, fmt.Errorf("read customer keys: %w", err)
	}
	productIDs, err := l.repo.IntSet(ctx, "product", "product_id")
	if err != nil {
		return nil, 0, fmt.Errorf("read product keys: %w", err)
	}

	kept := make([]records.Record, 0, len(sales))
	for _, row := range sales {
		cid, okC := row.Int64("customer_id")
		pid, okP := row.Int64("product_id")
		if !okC || !okP {
			continue
		}
		if _, ok := customerIDs[cid]; !ok {
			continue
		}
		if _, ok := productIDs[pid]; !ok {
			continue
		}
		kept = append(kept, row)
	}
	return kept, len(sales) - len(kept), nil
}

// Facts reads the persisted sales table back for cubing.
func (l *Loader) Facts(ctx context.Context) ([]string, []records.Record, error) {
	cols, rows, err := l.repo.Select(ctx,
		"SELECT sales_id, customer_id, product_id, sale_amount, sale_date FROM sales")
	if err != nil {
		return nil, nil, fmt.Errorf("read sales: %w", err)
	}
	return cols, rows, nil
}

// RowCounts returns per-table counts for post-load validation output.
func (l *Loader) RowCounts(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, t := range schema.LoadOrder() {
		_, rows, err := l.repo.Select(ctx, "SELECT COUNT(*) AS n FROM "+t.Name)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", t.Name, err)
		}
		if len(rows) == 1 {
			if n, ok := rows[0].Int64("n"); ok {
				out[t.Name] = n
			}
		}
	}
	return out, nil
}

// CustomerLifetimeValue aggregates total sale amount per customer inside the
// store, joined with customer names, highest value first.
func (l *Loader) CustomerLifetimeValue(ctx context.Context) ([]string, []records.Record, error) {
	const query = `SELECT c.customer_id,
       c.name,
       SUM(s.sale_amount) AS customer_lifetime_value
FROM sales s
JOIN customer c
  ON s.customer_id = c.customer_id
GROUP BY c.customer_id, c.name
ORDER BY customer_lifetime_value DESC, c.customer_id`
	cols, rows, err := l.repo.Select(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("customer lifetime value: %w", err)
	}
	return cols, rows, nil
}
