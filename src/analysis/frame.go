package analysis

import (
	"sort"
	"time"

	"stock-analytics/src/helpers"
	"stock-analytics/src/models"
	"stock-analytics/src/utils"

	"github.com/guregu/null/v6"
)

// WideTable is a date-indexed table with one column per ticker.
// Dates are strictly increasing and every column has len(Dates) cells.
type WideTable struct {
	Dates   []time.Time
	Tickers []string
	Columns map[string][]null.Float
}

type cellKey struct {
	date   time.Time
	ticker string
}

// -----------------------------------------------------------------------------

// NewWideTable allocates an empty table with every cell missing.
func NewWideTable(dates []time.Time, tickers []string) *WideTable {
	t := &WideTable{
		Dates:   dates,
		Tickers: tickers,
		Columns: make(map[string][]null.Float, len(tickers)),
	}
	for _, ticker := range tickers {
		t.Columns[ticker] = make([]null.Float, len(dates))
	}
	return t
}

// -----------------------------------------------------------------------------

// Len returns the number of rows.
func (t *WideTable) Len() int { return len(t.Dates) }

// Column returns the cells of a ticker, nil if the ticker is not a column.
func (t *WideTable) Column(ticker string) []null.Float { return t.Columns[ticker] }

// Cell returns one cell, missing when out of range.
func (t *WideTable) Cell(row int, ticker string) null.Float {
	col := t.Columns[ticker]
	if row < 0 || row >= len(col) {
		return null.Float{}
	}
	return col[row]
}

// -----------------------------------------------------------------------------

// mapColumns builds a table of the same shape by transforming each column.
func (t *WideTable) mapColumns(fn func(col []null.Float) []null.Float) *WideTable {
	out := &WideTable{
		Dates:   t.Dates,
		Tickers: t.Tickers,
		Columns: make(map[string][]null.Float, len(t.Tickers)),
	}
	for _, ticker := range t.Tickers {
		out.Columns[ticker] = fn(t.Columns[ticker])
	}
	return out
}

// -----------------------------------------------------------------------------

// Deduplicate keeps one record per (date, ticker). When a pair repeats, the last
// occurrence wins and takes the position of the first one, so the output order is stable.
func Deduplicate(records []models.MPriceRecord) []models.MPriceRecord {
	index := make(map[cellKey]int, len(records))
	out := make([]models.MPriceRecord, 0, len(records))
	for _, r := range records {
		r.Date = utils.NormalizeDate(r.Date)
		key := cellKey{r.Date, r.Ticker}
		if i, ok := index[key]; ok {
			out[i] = r
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

// -----------------------------------------------------------------------------

// Reshape pivots a long table into a wide table after deduplicating it.
// Rows are sorted by date and columns by ticker.
func Reshape(records []models.MPriceRecord) (*WideTable, error) {
	return pivot(Deduplicate(records))
}

// -----------------------------------------------------------------------------

// pivot expects unique (date, ticker) pairs and reports a ShapeConflictError otherwise.
func pivot(records []models.MPriceRecord) (*WideTable, error) {
	seen := make(map[cellKey]struct{}, len(records))
	dateSet := make(map[time.Time]struct{})
	tickerSet := make(map[string]struct{})

	for _, r := range records {
		d := utils.NormalizeDate(r.Date)
		key := cellKey{d, r.Ticker}
		if _, dup := seen[key]; dup {
			return nil, &helpers.ShapeConflictError{Date: d, Ticker: r.Ticker}
		}
		seen[key] = struct{}{}
		dateSet[d] = struct{}{}
		tickerSet[r.Ticker] = struct{}{}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	tickers := make([]string, 0, len(tickerSet))
	for t := range tickerSet {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	rowOf := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowOf[d] = i
	}

	table := NewWideTable(dates, tickers)
	for _, r := range records {
		row := rowOf[utils.NormalizeDate(r.Date)]
		table.Columns[r.Ticker][row] = null.FloatFrom(r.Price)
	}
	return table, nil
}
