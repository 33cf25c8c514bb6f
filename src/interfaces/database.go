package interfaces

import (
	"context"

	"stock-analytics/src/models"
)

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations on stock_prices.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the table if it does not exist.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// InsertPrices bulk inserts records, silently skipping rows whose (date, ticker)
	// already exists. It returns the number of rows actually inserted.
	InsertPrices(ctx context.Context, records []models.MPriceRecord) (int64, error)

	// -----------------------------------------------------------------------------

	// DistinctTickers returns every ticker present in the table, sorted.
	DistinctTickers(ctx context.Context) ([]string, error)

	// -----------------------------------------------------------------------------

	// LoadPrices returns the rows of the given tickers ordered by date ascending.
	LoadPrices(ctx context.Context, tickers []string) ([]models.MPriceRecord, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
