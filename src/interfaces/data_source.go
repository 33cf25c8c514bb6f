package interfaces

import (
	"context"
	"time"

	"stock-analytics/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for fetching daily prices from a market data provider.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchDaily retrieves the daily adjusted close of one ticker for [start, end),
	// ascending by date. An empty slice means the provider has nothing for that range.
	FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]models.MPriceRecord, error)
}
