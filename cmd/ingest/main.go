package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-analytics/src/config"
	"stock-analytics/src/logger"
	"stock-analytics/src/storage"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	reportPath := flag.String("report", "", "optional path for the JSON run report")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name+"-ingest")

	// 4. Lifecycle: SIGINT/SIGTERM cancel in-flight fetches
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Setup Components
	fetcher, err := setupFetcher(conf, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init data source: %v", err)
	}
	opener := storage.NewOpener(conf.MConfig, appLogger)

	// 6. Run
	pipeline := setupPipeline(conf, fetcher, opener)
	report, err := pipeline.Run(ctx)
	if err != nil {
		appLogger.Critical("Ingestion aborted: %v", err)
	}

	if *reportPath != "" {
		if err := writeReport(*reportPath, report); err != nil {
			appLogger.Warning("Failed to write report: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

func writeReport(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
