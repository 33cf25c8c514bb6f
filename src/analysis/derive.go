package analysis

import (
	"stock-analytics/src/analysis/core"
	"stock-analytics/src/helpers"

	"github.com/guregu/null/v6"
)

// -----------------------------------------------------------------------------

// Returns computes daily simple returns per column. Row 0 is always missing.
func Returns(prices *WideTable) *WideTable {
	return prices.mapColumns(func(col []null.Float) []null.Float {
		out := make([]null.Float, len(col))
		for t := 1; t < len(col); t++ {
			out[t] = core.PercentChange(col[t], col[t-1])
		}
		return out
	})
}

// -----------------------------------------------------------------------------

// CumulativeReturns compounds a returns table. Missing returns count as 0,
// so row 0 is 0 for every column.
func CumulativeReturns(returns *WideTable) *WideTable {
	return returns.mapColumns(core.CompoundReturns)
}

// -----------------------------------------------------------------------------

// MovingAverage computes the trailing mean over window rows per column.
func MovingAverage(prices *WideTable, window int) (*WideTable, error) {
	if window <= 0 {
		return nil, helpers.NewValidationError("moving average window must be positive, got %d", window)
	}
	return prices.mapColumns(func(col []null.Float) []null.Float {
		out := make([]null.Float, len(col))
		for t := range col {
			out[t] = core.TrailingMean(col, t, window)
		}
		return out
	}), nil
}
