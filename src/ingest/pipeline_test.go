package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stock-analytics/src/config"
	datasource "stock-analytics/src/data_source"
	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/models"
	"stock-analytics/src/snapshot"
	"stock-analytics/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeSource struct {
	data map[string][]models.MPriceRecord
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]models.MPriceRecord, error) {
	return f.data[ticker], nil
}

type fakeDB struct {
	inserted  []models.MPriceRecord
	insertErr error
	closeErr  error
	closed    int
}

func (f *fakeDB) Initialize(ctx context.Context) error { return nil }

func (f *fakeDB) InsertPrices(ctx context.Context, records []models.MPriceRecord) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return int64(len(records)), nil
}

func (f *fakeDB) DistinctTickers(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeDB) LoadPrices(ctx context.Context, tickers []string) ([]models.MPriceRecord, error) {
	return nil, nil
}

func (f *fakeDB) Close() error {
	f.closed++
	return f.closeErr
}

func openerFor(db *fakeDB) storage.Opener {
	return func(ctx context.Context) (interfaces.IDatabase, error) { return db, nil }
}

// -----------------------------------------------------------------------------

func aaplRows() []models.MPriceRecord {
	return []models.MPriceRecord{
		{Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), Ticker: "AAPL", Price: 75.09},
		{Date: time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), Ticker: "AAPL", Price: 74.36},
	}
}

func newTestPipeline(t *testing.T, tickers []string, src *fakeSource, open storage.Opener) *Pipeline {
	t.Helper()
	cfg := &config.Config{MConfig: &models.MConfig{
		Name: "test",
		Ingestion: models.MIngestionConfig{
			Tickers:      tickers,
			StartDate:    "2020-01-01",
			EndDate:      "2020-01-04",
			SnapshotPath: filepath.Join(t.TempDir(), "data", "raw_prices.csv"),
		},
	}}
	log := logger.NewLogger(cfg.MConfig, "test")
	fetcher := datasource.NewBatchFetcher(src, 1, log)
	return NewPipeline(cfg, fetcher, open, log)
}

func TestRunSkipsTickerWithoutData(t *testing.T) {
	db := &fakeDB{}
	src := &fakeSource{data: map[string][]models.MPriceRecord{"AAPL": aaplRows()}}
	p := newTestPipeline(t, []string{"AAPL", "BADTICKER"}, src, openerFor(db))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, report.Fetched)
	assert.Equal(t, []string{"BADTICKER"}, report.Skipped)
	assert.Equal(t, 2, report.RowsFetched)
	assert.Equal(t, int64(2), report.RowsInserted)
	assert.True(t, report.Persisted)

	assert.Equal(t, aaplRows(), db.inserted)
	assert.Equal(t, 1, db.closed)

	snap, err := snapshot.ReadCSV(report.SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, aaplRows(), snap)
}

func TestRunKeepsConfiguredTickerOrder(t *testing.T) {
	db := &fakeDB{}
	xom := []models.MPriceRecord{{Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), Ticker: "XOM", Price: 70.9}}
	src := &fakeSource{data: map[string][]models.MPriceRecord{"AAPL": aaplRows(), "XOM": xom}}
	p := newTestPipeline(t, []string{"XOM", "AAPL"}, src, openerFor(db))

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, db.inserted, 3)
	assert.Equal(t, "XOM", db.inserted[0].Ticker)
	assert.Equal(t, "AAPL", db.inserted[1].Ticker)
}

func TestRunStoreOpenFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{data: map[string][]models.MPriceRecord{"AAPL": aaplRows()}}
	open := func(ctx context.Context) (interfaces.IDatabase, error) {
		return nil, errors.New("connection refused")
	}
	p := newTestPipeline(t, []string{"AAPL"}, src, open)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Persisted)
	assert.Zero(t, report.RowsInserted)
	assert.FileExists(t, report.SnapshotPath)
	assert.Equal(t, int64(1), p.Errors.ErrorCount())
}

func TestRunCloseFailureAfterCommitStaysPersisted(t *testing.T) {
	db := &fakeDB{closeErr: errors.New("close: connection reset")}
	src := &fakeSource{data: map[string][]models.MPriceRecord{"AAPL": aaplRows()}}
	p := newTestPipeline(t, []string{"AAPL"}, src, openerFor(db))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Persisted)
	assert.Equal(t, int64(2), report.RowsInserted)
	assert.Equal(t, int64(0), p.Errors.ErrorCount())
	assert.Equal(t, 1, db.closed)
}

func TestRunInsertFailureReleasesStore(t *testing.T) {
	db := &fakeDB{insertErr: errors.New("disk full")}
	src := &fakeSource{data: map[string][]models.MPriceRecord{"AAPL": aaplRows()}}
	p := newTestPipeline(t, []string{"AAPL"}, src, openerFor(db))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Persisted)
	assert.Equal(t, 1, db.closed)
}

func TestRunEmptyFetch(t *testing.T) {
	db := &fakeDB{}
	p := newTestPipeline(t, []string{"BADTICKER"}, &fakeSource{}, openerFor(db))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Fetched)
	assert.Zero(t, report.RowsInserted)
	assert.Empty(t, db.inserted)
	assert.Equal(t, 1, db.closed)

	data, err := os.ReadFile(report.SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, "Date,ticker,adj_close\n", string(data))
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	db := &fakeDB{}
	src := &fakeSource{data: map[string][]models.MPriceRecord{"AAPL": aaplRows()}}
	p := newTestPipeline(t, []string{"AAPL"}, src, openerFor(db))
	p.Config.Ingestion.MetricsTextfile = filepath.Join(t.TempDir(), "ingest.prom")

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(p.Config.Ingestion.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stock_analytics_ingest_rows_fetched_total")
}

func TestRunCancelled(t *testing.T) {
	db := &fakeDB{}
	p := newTestPipeline(t, []string{"AAPL"}, &fakeSource{}, openerFor(db))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, db.closed, "store never opened")
}

func TestCollectStopsOnFatalError(t *testing.T) {
	p := newTestPipeline(t, nil, &fakeSource{}, nil)
	report := &models.MIngestReport{}
	boom := errors.New("decoder panic")

	results := []datasource.TickerResult{
		{Ticker: "AAPL", Records: aaplRows()},
		{Ticker: "XOM", Err: boom},
	}
	_, err := p.collect(results, report)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"AAPL"}, report.Fetched)
}

func TestCollectSkipsNoData(t *testing.T) {
	p := newTestPipeline(t, nil, &fakeSource{}, nil)
	report := &models.MIngestReport{}

	results := []datasource.TickerResult{
		{Ticker: "BADTICKER", Err: helpers.NewNoDataError("BADTICKER", nil)},
		{Ticker: "AAPL", Records: aaplRows()},
	}
	long, err := p.collect(results, report)

	require.NoError(t, err)
	assert.Equal(t, aaplRows(), long)
	assert.Equal(t, []string{"BADTICKER"}, report.Skipped)
}

func TestCoverage(t *testing.T) {
	p := newTestPipeline(t, nil, &fakeSource{}, nil)
	p.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	results := []datasource.TickerResult{
		{Ticker: "AAPL", Records: aaplRows()},
		{Ticker: "BADTICKER", Err: errors.New("skip")},
	}
	got := p.coverage(results, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC))

	require.Len(t, got, 1)
	assert.Equal(t, "xnys", got[0].MIC)
	assert.Equal(t, 4, got[0].Expected)
	assert.Equal(t, 2, got[0].Rows)
	assert.InDelta(t, 0.5, got[0].Ratio(), 1e-12)
}

func TestCoverageClipsFuture(t *testing.T) {
	p := newTestPipeline(t, nil, &fakeSource{}, nil)
	p.now = func() time.Time { return time.Date(2020, 1, 2, 15, 0, 0, 0, time.UTC) }

	results := []datasource.TickerResult{{Ticker: "AAPL", Records: aaplRows()[:1]}}
	got := p.coverage(results, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 1, got[0].Expected)
	assert.Equal(t, 1.0, got[0].Ratio())
}
