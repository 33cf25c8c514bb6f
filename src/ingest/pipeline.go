package ingest

import (
	"context"
	"errors"
	"time"

	"stock-analytics/src/config"
	datasource "stock-analytics/src/data_source"
	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/metrics"
	"stock-analytics/src/models"
	"stock-analytics/src/snapshot"
	"stock-analytics/src/storage"
	"stock-analytics/src/utils"
)

// Pipeline runs one ingestion: fetch, snapshot, persist.
type Pipeline struct {
	Config  *config.Config
	Fetcher *datasource.BatchFetcher
	Open    storage.Opener
	Errors  *helpers.ErrorHandler
	Logger  *logger.Logger

	// now is the clock used by the coverage check
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewPipeline(cfg *config.Config, fetcher *datasource.BatchFetcher, open storage.Opener, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Fetcher: fetcher,
		Open:    open,
		Errors:  helpers.NewErrorHandler(log),
		Logger:  log,
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// Run executes the pipeline. Tickers without data and store failures do not fail
// the run: they show up in the report. An error is returned for an invalid date
// range, a cancelled context or a failure the error handler classifies as fatal.
func (p *Pipeline) Run(ctx context.Context) (*models.MIngestReport, error) {
	started := time.Now()
	defer func() { metrics.RecordIngestDuration(time.Since(started)) }()

	start, end, err := p.Config.DateRange()
	if err != nil {
		return nil, helpers.NewConfigurationError("invalid ingestion range", err)
	}

	tickers := p.Config.Ingestion.Tickers
	report := &models.MIngestReport{
		Requested: tickers,
		Fetched:   []string{},
		Skipped:   []string{},
	}

	p.Logger.Info("Ingesting %d tickers from %s to %s", len(tickers), utils.FormatDate(start), utils.FormatDate(end))

	// 1. Fetch; the long table follows the configured ticker order
	results := p.Fetcher.FetchAll(ctx, tickers, start, end)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	long, err := p.collect(results, report)
	if err != nil {
		return nil, err
	}
	report.RowsFetched = len(long)
	metrics.RecordRowsFetched(len(long))

	if len(long) == 0 {
		p.Logger.Warning("No data fetched for any ticker")
	}

	// 2. Coverage against the exchange calendar
	for _, c := range p.coverage(results, start, end) {
		if c.Ratio() < CoverageWarnRatio {
			p.Logger.Warning("%s: %d/%d sessions (%.1f%%) on %s", c.Ticker, c.Rows, c.Expected, c.Ratio()*100, c.MIC)
		} else {
			p.Logger.Debug("%s: %d/%d sessions on %s", c.Ticker, c.Rows, c.Expected, c.MIC)
		}
	}

	// 3. Snapshot
	if path := p.Config.Ingestion.SnapshotPath; path != "" {
		if err := snapshot.WriteCSV(path, long); err != nil {
			p.Logger.Error("Failed to write snapshot %s: %v", path, err)
		} else {
			report.SnapshotPath = path
			p.Logger.Info("Wrote %d rows to %s", len(long), path)
		}
	}

	// 4. Persist
	err = storage.WithDatabase(ctx, p.Open, p.Logger, func(db interfaces.IDatabase) error {
		n, err := db.InsertPrices(ctx, long)
		if err != nil {
			return helpers.NewStoreError("insert", err)
		}
		report.RowsInserted = n
		return nil
	})
	if err != nil {
		var storeErr *helpers.StoreError
		if !errors.As(err, &storeErr) {
			storeErr = helpers.NewStoreError("open", err)
		}
		metrics.RecordStoreFailure("write")
		if p.Errors.Handle(storeErr, "persist") {
			return nil, storeErr
		}
	} else {
		report.Persisted = true
		metrics.RecordRowsInserted(report.RowsInserted)
		p.Logger.Info("Inserted %d new rows into stock_prices (%d duplicates skipped)",
			report.RowsInserted, int64(len(long))-report.RowsInserted)
	}

	// 5. Metrics textfile
	if path := p.Config.Ingestion.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			p.Logger.Warning("Failed to write metrics textfile %s: %v", path, err)
		}
	}

	p.Logger.Info("Ingestion done: %d fetched, %d skipped, %d rows, %d inserted, persisted=%t",
		len(report.Fetched), len(report.Skipped), report.RowsFetched, report.RowsInserted, report.Persisted)
	return report, nil
}

// -----------------------------------------------------------------------------

// collect concatenates the successful fetches in ticker order and records the
// outcome of each ticker in report. It stops at the first fatal error.
func (p *Pipeline) collect(results []datasource.TickerResult, report *models.MIngestReport) ([]models.MPriceRecord, error) {
	long := make([]models.MPriceRecord, 0)
	for _, r := range results {
		if r.Err != nil {
			if p.Errors.Handle(r.Err, "fetch "+r.Ticker) {
				return nil, r.Err
			}
			report.Skipped = append(report.Skipped, r.Ticker)
			metrics.RecordTicker("no_data")
			continue
		}
		report.Fetched = append(report.Fetched, r.Ticker)
		long = append(long, r.Records...)
		metrics.RecordTicker("ok")
	}
	return long, nil
}
