package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"smartsales/internal/config"
	"smartsales/internal/csvio"
	"smartsales/internal/cube"
	"smartsales/internal/storage"
	"smartsales/internal/warehouse"
)

// newRepositoryFn is a test seam; production points at the storage factory.
var newRepositoryFn = storage.New

// run reads the sales facts once, derives the calendar attributes, builds
// every configured cube, and writes one CSV per cube. The warehouse is only
// read, never mutated.
func run(ctx context.Context, log *slog.Logger, p config.Pipeline, clvPath string) error {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Driver: p.Warehouse.Driver,
		DSN:    resolveDSN(p.Warehouse.DSN),
	})
	if err != nil {
		return fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	loader := warehouse.NewLoader(repo, log)
	_, facts, err := loader.Facts(ctx)
	if err != nil {
		return err
	}
	log.Info("facts read", "rows", len(facts))

	enriched, dropped := cube.WithTimeAttrs(facts, "sale_date", log)
	if dropped > 0 {
		log.Warn("facts without usable sale_date excluded from cubes", "dropped", dropped)
	}

	for _, cs := range p.Cubes {
		spec := cube.SpecFromConfig(cs)
		c, err := cube.Build(enriched, spec)
		if err != nil {
			return fmt.Errorf("cube %s: %w", cs.Name, err)
		}
		path := outputPath(cs)
		if err := csvio.Write(path, c.Columns, c.Rows); err != nil {
			return fmt.Errorf("cube %s: %w", cs.Name, err)
		}
		log.Info("cube written", "cube", cs.Name, "rows", len(c.Rows), "path", path)
	}

	if clvPath != "" {
		columns, rows, err := loader.CustomerLifetimeValue(ctx)
		if err != nil {
			return err
		}
		if err := csvio.Write(clvPath, columns, rows); err != nil {
			return fmt.Errorf("customer lifetime value: %w", err)
		}
		log.Info("report written", "report", "customer_lifetime_value", "rows", len(rows), "path", clvPath)
	}
	return nil
}

// outputPath resolves where a cube's CSV lands, defaulting to
// output/<name>.csv next to the working directory.
func outputPath(cs config.CubeSpec) string {
	if cs.Output != "" {
		return cs.Output
	}
	return filepath.Join("output", cs.Name+".csv")
}

// resolveDSN chooses the connection string: env override wins, then config.
func resolveDSN(def string) string {
	if s := os.Getenv("SMARTSALES_DSN"); s != "" {
		return s
	}
	return def
}
