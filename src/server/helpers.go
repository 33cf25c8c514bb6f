package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stock-analytics/src/analysis"
	"stock-analytics/src/helpers"
)

// -----------------------------------------------------------------------------

func parseTickers(raw string) []string {
	tickers := analysis.ParseTickerList(raw)
	for i, t := range tickers {
		tickers[i] = strings.ToUpper(t)
	}
	return tickers
}

// -----------------------------------------------------------------------------

// parseWindows reads a comma separated list of moving-average windows. Empty means
// the configured defaults.
func parseWindows(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var windows []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil || w <= 0 {
			return nil, helpers.NewValidationError("invalid moving average window %q", part)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// -----------------------------------------------------------------------------

func statusFor(err error) int {
	var validation *helpers.ValidationError
	var storeErr *helpers.StoreError

	switch {
	case errors.Is(err, helpers.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
