// This file keeps the CLI layer thin: it wires CSV reading, cleaning,
// normalization, and the warehouse load without importing database drivers
// or backend-specific packages directly.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"smartsales/internal/config"
	"smartsales/internal/csvio"
	"smartsales/internal/datedim"
	"smartsales/internal/normalize"
	"smartsales/internal/schema"
	"smartsales/internal/scrub"
	"smartsales/internal/storage"
	"smartsales/internal/warehouse"
	"smartsales/pkg/records"
)

// newRepositoryFn is a test seam; production points at the storage factory.
var newRepositoryFn = storage.New

// run executes one full batch cycle: read every raw input, clean and
// normalize the rows, then drop, recreate, and reload the warehouse.
//
// All inputs are read before the store is touched, so a missing or
// unparseable file never leaves the warehouse half-destroyed.
func run(ctx context.Context, log *slog.Logger, p config.Pipeline) (warehouse.LoadStats, error) {
	var zero warehouse.LoadStats

	start, end, err := dateRange(p.DateDim)
	if err != nil {
		return zero, err
	}
	dates, err := datedim.Generate(start, end)
	if err != nil {
		return zero, fmt.Errorf("date dimension: %w", err)
	}

	rawCustomers, err := readInput(p, "customers")
	if err != nil {
		return zero, err
	}
	rawProducts, err := readInput(p, "products")
	if err != nil {
		return zero, err
	}
	rawSales, err := readInput(p, "sales")
	if err != nil {
		return zero, err
	}

	chain, err := chainFromConfig(p.Transform)
	if err != nil {
		return zero, err
	}

	customers := cleanEntity(log, chain, rawCustomers, schema.Customers())
	products := cleanEntity(log, chain, rawProducts, schema.Products())
	sales := cleanEntity(log, chain, rawSales, schema.Sales())

	repo, err := newRepositoryFn(ctx, storage.Config{
		Driver: p.Warehouse.Driver,
		DSN:    resolveDSN(p.Warehouse.DSN),
	})
	if err != nil {
		return zero, fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	loader := warehouse.NewLoader(repo, log)
	loader.SetBatchSize(p.Warehouse.Options.Int("batch_size", 0))
	if err := loader.Reset(ctx); err != nil {
		return zero, err
	}
	stats, err := loader.Load(ctx, warehouse.Inputs{
		Dates:     dates,
		Customers: customers,
		Products:  products,
		Sales:     sales,
	})
	if err != nil {
		return zero, err
	}

	counts, err := loader.RowCounts(ctx)
	if err != nil {
		return zero, err
	}
	for table, n := range counts {
		log.Info("table loaded", "table", table, "rows", n)
	}
	if counts["sales"] != stats.Sales {
		log.Warn("sales count mismatch after load",
			"inserted", stats.Sales, "counted", counts["sales"])
	}
	return stats, nil
}

// cleanEntity runs the scrub chain and entity normalization for one table,
// logging the per-stage drop accounting.
func cleanEntity(log *slog.Logger, chain scrub.Chain, raw []records.Record, c schema.Contract) []records.Record {
	scrubbed := chain.Apply(raw)
	rows, st := normalize.Entity(scrubbed, c)
	log.Info("normalized",
		"table", c.Name,
		"raw", len(raw),
		"scrubbed", len(scrubbed),
		"kept", st.Output,
		"coerced_null", st.CoercedNull,
		"dropped_missing", st.DroppedMissing,
		"dropped_dup_key", st.DroppedDupKey,
		"synthetic_keys", st.SyntheticKeys,
	)
	return rows
}

// readInput loads one configured raw CSV into records, honoring the
// pipeline's csv parsing options.
func readInput(p config.Pipeline, name string) ([]records.Record, error) {
	path, ok := p.Inputs[name]
	if !ok || path == "" {
		return nil, fmt.Errorf("input %q not configured", name)
	}
	_, rows, err := csvio.Read(path, csvio.ReadOptions{
		Comma:      p.CSV.Rune("comma", ','),
		LazyQuotes: p.CSV.Bool("lazy_quotes", false),
	})
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", name, err)
	}
	return rows, nil
}

// chainFromConfig builds the cleaning chain from the configured steps and
// their options, falling back to the standard chain when none are
// configured. An unknown step kind is a configuration error.
func chainFromConfig(ts []config.Transform) (scrub.Chain, error) {
	if len(ts) == 0 {
		return scrub.Default(), nil
	}
	var c scrub.Chain
	for _, t := range ts {
		switch t.Kind {
		case "standardize_headers":
			c = append(c, scrub.StandardizeHeaders{
				Rename: t.Options.StringMap("rename"),
			})
		case "trim":
			c = append(c, scrub.Trim{})
		case "drop_empty":
			c = append(c, scrub.DropEmpty{})
		case "drop_duplicates":
			c = append(c, scrub.DropDuplicates{
				Keys: t.Options.StringSlice("keys"),
			})
		default:
			return nil, fmt.Errorf("unsupported transform.kind=%s", t.Kind)
		}
	}
	return c, nil
}

// dateRange parses the inclusive calendar bounds for the date dimension.
func dateRange(r config.DateRange) (time.Time, time.Time, error) {
	start, err := time.Parse(datedim.Layout, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_dim.start: %w", err)
	}
	end, err := time.Parse(datedim.Layout, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_dim.end: %w", err)
	}
	return start, end, nil
}

// resolveDSN chooses the connection string: env override wins (12-factor),
// then the config value.
func resolveDSN(def string) string {
	return getenv("SMARTSALES_DSN", def)
}

// getenv reads an environment variable, returning def when unset or empty.
func getenv(k, def string) string {
	if s := os.Getenv(k); s != "" {
		return s
	}
	return def
}

// validatePipeline reports configuration problems a run would hit; an empty
// slice means the config is usable.
func validatePipeline(p config.Pipeline) []string {
	var issues []string
	for _, name := range []string{"customers", "products", "sales"} {
		if p.Inputs[name] == "" {
			issues = append(issues, fmt.Sprintf("inputs.%s: path is required", name))
		}
	}
	if _, _, err := dateRange(p.DateDim); err != nil {
		issues = append(issues, err.Error())
	}
	if _, err := chainFromConfig(p.Transform); err != nil {
		issues = append(issues, err.Error())
	}
	known := false
	for _, d := range storage.Drivers() {
		if d == p.Warehouse.Driver {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, fmt.Sprintf("warehouse.driver: unknown driver %q (have %v)", p.Warehouse.Driver, storage.Drivers()))
	}
	return issues
}
