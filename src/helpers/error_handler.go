package helpers

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"stock-analytics/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StockAnalyticsError struct {
	Message string
	Cause   error
}

func (e *StockAnalyticsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StockAnalyticsError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct{ StockAnalyticsError }
type ValidationError struct{ StockAnalyticsError }
type StoreError struct{ StockAnalyticsError }

// NoDataError means a ticker fetch failed or came back empty. The ticker is skipped.
type NoDataError struct {
	StockAnalyticsError
	Ticker string
}

// ShapeConflictError means a (date, ticker) pair still had several values when the
// long table was pivoted. Deduplication runs before the pivot, so this is a bug.
type ShapeConflictError struct {
	Date   time.Time
	Ticker string
}

func (e *ShapeConflictError) Error() string {
	return fmt.Sprintf("shape conflict: duplicate entry for (%s, %s) after deduplication", e.Date.Format("2006-01-02"), e.Ticker)
}

// ErrEmptySelection stops an analytics run when the user picked no tickers.
var ErrEmptySelection = errors.New("no tickers selected")

// -----------------------------------------------------------------------------

func NewNoDataError(ticker string, cause error) *NoDataError {
	return &NoDataError{
		StockAnalyticsError: StockAnalyticsError{Message: fmt.Sprintf("no data for %s", ticker), Cause: cause},
		Ticker:              ticker,
	}
}

func NewStoreError(operation string, cause error) *StoreError {
	return &StoreError{StockAnalyticsError{Message: fmt.Sprintf("store %s failed", operation), Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{StockAnalyticsError{Message: fmt.Sprintf(format, args...)}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{StockAnalyticsError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler is shared by concurrent request handlers.
type ErrorHandler struct {
	Logger *logger.Logger
	count  atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// Handle logs err with its context and classifies it. It reports whether the error is
// fatal for the whole run: NoData and Store errors only cost one unit of work.
func (e *ErrorHandler) Handle(err error, context string) (fatal bool) {
	if err == nil {
		return false
	}
	e.count.Add(1)

	var noData *NoDataError
	var storeErr *StoreError
	var conflict *ShapeConflictError

	switch {
	case errors.As(err, &noData):
		e.Logger.Warning("%s: skipping %s: %v", context, noData.Ticker, err)
		return false
	case errors.As(err, &storeErr):
		e.Logger.Error("%s: %v (data not persisted)", context, err)
		return false
	case errors.Is(err, ErrEmptySelection):
		e.Logger.Warning("%s: %v", context, err)
		return true
	case errors.As(err, &conflict):
		e.Logger.Error("%s: BUG: %v", context, err)
		return true
	default:
		e.Logger.Error("Error in %s: %v", context, err)
		return true
	}
}

// -----------------------------------------------------------------------------

// ErrorCount returns the number of errors handled so far.
func (e *ErrorHandler) ErrorCount() int64 {
	return e.count.Load()
}
