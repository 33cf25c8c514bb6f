package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *models.MConfig {
	return &models.MConfig{Storage: models.MStorageConfig{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "nested", "stocks.db"),
	}}
}

func openSQLite(t *testing.T, cfg *models.MConfig) *SQLiteDB {
	t.Helper()
	db := NewSQLiteDB(cfg, logger.NewLogger(nil, "test"))
	require.NoError(t, db.Initialize(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, sqliteConfig(t))

	records := []models.MPriceRecord{
		{Date: day("2020-01-03"), Ticker: "AAPL", Price: 74},
		{Date: day("2020-01-02"), Ticker: "MSFT", Price: 158},
		{Date: day("2020-01-02"), Ticker: "AAPL", Price: 75},
		{Date: day("2020-01-02"), Ticker: "XOM", Price: 70},
	}

	n, err := db.InsertPrices(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	tickers, err := db.DistinctTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "XOM"}, tickers)

	got, err := db.LoadPrices(ctx, []string{"MSFT", "AAPL"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.MPriceRecord{Date: day("2020-01-02"), Ticker: "AAPL", Price: 75}, got[0])
	assert.Equal(t, "MSFT", got[1].Ticker)
	assert.Equal(t, day("2020-01-03"), got[2].Date)
}

func TestSQLiteInsertSkipsExistingRows(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, sqliteConfig(t))

	first := []models.MPriceRecord{{Date: day("2020-01-02"), Ticker: "AAPL", Price: 75}}
	n, err := db.InsertPrices(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	second := []models.MPriceRecord{
		{Date: day("2020-01-02"), Ticker: "AAPL", Price: 99},
		{Date: day("2020-01-03"), Ticker: "AAPL", Price: 74},
	}
	n, err = db.InsertPrices(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := db.LoadPrices(ctx, []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 75.0, got[0].Price, "existing row untouched")
}

func TestSQLiteTableSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	db := NewSQLiteDB(cfg, logger.NewLogger(nil, "test"))
	require.NoError(t, db.Initialize(ctx))
	_, err := db.InsertPrices(ctx, []models.MPriceRecord{{Date: day("2020-01-02"), Ticker: "AAPL", Price: 75}})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened := openSQLite(t, cfg)
	tickers, err := reopened.DistinctTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)
}

func TestLoadPricesEmptySelection(t *testing.T) {
	db := openSQLite(t, sqliteConfig(t))

	_, err := db.LoadPrices(context.Background(), nil)
	assert.ErrorIs(t, err, helpers.ErrEmptySelection)
}

// -----------------------------------------------------------------------------

type closeTracker struct {
	interfaces.IDatabase
	closed   int
	closeErr error
}

func (c *closeTracker) Close() error {
	c.closed++
	return c.closeErr
}

func TestWithDatabaseReleasesOnError(t *testing.T) {
	tracker := &closeTracker{}
	open := func(ctx context.Context) (interfaces.IDatabase, error) { return tracker, nil }
	boom := errors.New("boom")

	err := WithDatabase(context.Background(), open, logger.NewLogger(nil, "test"), func(db interfaces.IDatabase) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, tracker.closed)
}

func TestWithDatabaseCloseFailureKeepsResult(t *testing.T) {
	tracker := &closeTracker{closeErr: errors.New("close: broken pipe")}
	open := func(ctx context.Context) (interfaces.IDatabase, error) { return tracker, nil }

	err := WithDatabase(context.Background(), open, logger.NewLogger(nil, "test"), func(db interfaces.IDatabase) error {
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, tracker.closed)
}

func TestWithDatabaseOpenFailure(t *testing.T) {
	boom := errors.New("unreachable")
	open := func(ctx context.Context) (interfaces.IDatabase, error) { return nil, boom }
	called := false

	err := WithDatabase(context.Background(), open, logger.NewLogger(nil, "test"), func(db interfaces.IDatabase) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestNewOpenerSQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	open := NewOpener(cfg, logger.NewLogger(nil, "test"))

	err := WithDatabase(context.Background(), open, logger.NewLogger(nil, "test"), func(db interfaces.IDatabase) error {
		_, err := db.InsertPrices(context.Background(), []models.MPriceRecord{{Date: day("2020-01-02"), Ticker: "AAPL", Price: 75}})
		return err
	})
	require.NoError(t, err)
}

func TestNewOpenerUnknownType(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "oracle"}}

	_, err := NewOpener(cfg, logger.NewLogger(nil, "test"))(context.Background())

	var cfgErr *helpers.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
