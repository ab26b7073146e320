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
	// config specifies which to use but we need to build in support for all of them.
	_ "smartsales/internal/storage/all"
)

// main is the entry point for the ETL binary. It loads the pipeline config,
// cleans and normalizes the raw inputs, and performs a full warehouse reload.
func main() {
	var (
		cfgPath  string
		validate bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
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

	issues := validatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "error: %s\n", iss)
	}
	if len(issues) > 0 {
		log.Error("configuration is invalid", "path", cfgPath, "issues", len(issues))
		os.Exit(1)
	}
	if validate {
		log.Info("configuration is valid", "path", cfgPath)
		return
	}

	start := time.Now()
	stats, err := run(context.Background(), log, p)
	if err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
	log.Info("load complete",
		"pipeline", p.Name,
		"dates", stats.Dates,
		"customers", stats.Customers,
		"products", stats.Products,
		"sales", stats.Sales,
		"sales_filtered", stats.SalesFiltered,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
