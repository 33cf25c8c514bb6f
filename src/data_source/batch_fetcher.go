package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-analytics/src/data_source/yahoo"
	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/models"
)

// TickerResult is the outcome of one ticker fetch.
type TickerResult struct {
	Ticker  string
	Records []models.MPriceRecord
	Err     error // *helpers.NoDataError when the ticker was skipped
}

// BatchFetcher fetches many tickers from one source with a bounded number of
// requests in flight.
type BatchFetcher struct {
	Source      interfaces.IDataSource
	Concurrency int
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

// NewSource builds the data source named in the ingestion config.
func NewSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) (interfaces.IDataSource, error) {
	switch cfg.Ingestion.Source {
	case "", "yahoo":
		return yahoo.NewYahooFinanceSource(cfg, netMgr), nil
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unknown data source %q", cfg.Ingestion.Source), nil)
	}
}

// -----------------------------------------------------------------------------

func NewBatchFetcher(source interfaces.IDataSource, concurrency int, log *logger.Logger) *BatchFetcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchFetcher{Source: source, Concurrency: concurrency, Logger: log}
}

// -----------------------------------------------------------------------------

// FetchAll fetches every ticker and returns one result per ticker in input order.
// A failed or empty fetch never aborts the batch: it is reported as a NoDataError.
func (f *BatchFetcher) FetchAll(ctx context.Context, tickers []string, start, end time.Time) []TickerResult {
	results := make([]TickerResult, len(tickers))
	if len(tickers) == 0 {
		return results
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, f.Concurrency)

	for i, ticker := range tickers {
		wg.Add(1)
		go func(idx int, sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[idx] = TickerResult{Ticker: sym, Err: helpers.NewNoDataError(sym, ctx.Err())}
				return
			}
			defer func() { <-sem }()

			results[idx] = f.fetchOne(ctx, sym, start, end)
		}(i, ticker)
	}

	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	f.Logger.Info("%s: Fetched %d/%d tickers successfully", f.Source.Name(), ok, len(tickers))
	return results
}

// -----------------------------------------------------------------------------

func (f *BatchFetcher) fetchOne(ctx context.Context, ticker string, start, end time.Time) TickerResult {
	f.Logger.Info("Downloading %s...", ticker)

	records, err := f.Source.FetchDaily(ctx, ticker, start, end)
	if err != nil {
		return TickerResult{Ticker: ticker, Err: helpers.NewNoDataError(ticker, err)}
	}
	if len(records) == 0 {
		return TickerResult{Ticker: ticker, Err: helpers.NewNoDataError(ticker, nil)}
	}
	return TickerResult{Ticker: ticker, Records: records}
}
