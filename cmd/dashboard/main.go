package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-analytics/src/config"
	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/storage"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	tickersFlag := flag.String("tickers", "", "comma separated tickers (default: first known tickers)")
	windowsFlag := flag.String("windows", "", "comma separated moving average windows (default: from config)")
	outPath := flag.String("out", "", "render the dashboard once to this JSON file instead of serving")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name+"-dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := parseOptions(*tickersFlag, flagPassed("tickers"), *windowsFlag)
	if err != nil {
		appLogger.Critical("Invalid arguments: %v", err)
	}

	// 4. Scoped store; released on every path
	opener := storage.NewOpener(conf.MConfig, appLogger)
	err = storage.WithDatabase(ctx, opener, appLogger, func(db interfaces.IDatabase) error {
		if *outPath != "" {
			return renderOnce(ctx, conf, db, opts, *outPath, appLogger)
		}
		return serve(ctx, conf, db, appLogger)
	})

	if err != nil {
		if errors.Is(err, helpers.ErrEmptySelection) {
			appLogger.Warning("%v", err)
			os.Exit(2)
		}
		appLogger.Critical("Dashboard failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}
