package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"smartsales/internal/config"

	// register all backends with the storage factory.
	_ "smartsales/internal/storage/all"
)

// main is the entry point for the cube binary. It reads the loaded facts
// from the warehouse, builds every configured cube, and writes the results
// as CSV files.
func main() {
	var (
		cfgPath string
		clvPath string
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	flag.StringVar(&clvPath, "clv-output", "output/customer_lifetime_value.csv", "customer lifetime value report path (empty to skip)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	start := time.Now()
	if err := run(context.Background(), log, p, clvPath); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
	log.Info("cubes complete",
		"pipeline", p.Name,
		"cubes", len(p.Cubes),
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
