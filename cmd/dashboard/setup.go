package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"stock-analytics/src/analysis"
	"stock-analytics/src/config"
	"stock-analytics/src/dashboard"
	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/server"
)

// options is the parsed command line selection.
type options struct {
	Tickers    []string
	TickersSet bool // -tickers given, even empty
	Windows    []int
}

// -----------------------------------------------------------------------------

func parseOptions(tickers string, tickersSet bool, windows string) (*options, error) {
	opts := &options{TickersSet: tickersSet}
	if tickersSet {
		opts.Tickers = analysis.ParseTickerList(strings.ToUpper(tickers))
	}

	for _, part := range analysis.ParseTickerList(windows) {
		w, err := strconv.Atoi(part)
		if err != nil || w <= 0 {
			return nil, helpers.NewValidationError("invalid moving average window %q", part)
		}
		opts.Windows = append(opts.Windows, w)
	}
	return opts, nil
}

// -----------------------------------------------------------------------------

// renderOnce computes one dashboard and writes it as JSON.
func renderOnce(ctx context.Context, conf *config.Config, db interfaces.IDatabase, opts *options, out string, appLogger *logger.Logger) error {
	svc := dashboard.NewService(conf.MConfig, db, logger.NewLogger(conf.MConfig, "DashboardService"))

	requested := opts.Tickers
	if !opts.TickersSet {
		universe, err := svc.Universe(ctx)
		if err != nil {
			return err
		}
		requested = universe.Defaults
		appLogger.Info("No -tickers given, using %v", requested)
	}

	result, err := svc.Run(ctx, requested, opts.Windows)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	appLogger.Info("Wrote dashboard for %v to %s", result.Tickers, out)
	return nil
}

// -----------------------------------------------------------------------------

// serve runs the HTTP dashboard until ctx is cancelled.
func serve(ctx context.Context, conf *config.Config, db interfaces.IDatabase, appLogger *logger.Logger) error {
	svc := dashboard.NewService(conf.MConfig, db, logger.NewLogger(conf.MConfig, "DashboardService"))
	srv := server.NewDashboardServer(conf.MConfig, svc, logger.NewLogger(conf.MConfig, "DashboardServer"))
	return srv.Start(ctx)
}
