package models

import "github.com/guregu/null/v6"

// MPoint is one chart sample. A missing Value marshals to null so the
// frontend draws a gap instead of a zero.
type MPoint struct {
	Date  string     `json:"date"`
	Value null.Float `json:"value"`
}

type MSeries struct {
	Name   string   `json:"name"`
	Points []MPoint `json:"points"`
}

// MReferenceLine is a horizontal guide drawn across a chart.
type MReferenceLine struct {
	Value float64 `json:"value"`
	Style string  `json:"style"` // e.g. "dashed"
	Color string  `json:"color"`
}

// MChart describes one rendered view.
type MChart struct {
	Title          string           `json:"title"`
	XLabel         string           `json:"x_label"`
	YLabel         string           `json:"y_label"`
	Series         []MSeries        `json:"series"`
	ReferenceLines []MReferenceLine `json:"reference_lines,omitempty"`
}

// MSummaryRow is the descriptive statistics of one ticker's daily returns.
type MSummaryRow struct {
	Ticker string     `json:"ticker"`
	Count  int        `json:"count"`
	Mean   null.Float `json:"mean"`
	Std    null.Float `json:"std"`
	Min    null.Float `json:"min"`
	Q25    null.Float `json:"25%"`
	Median null.Float `json:"50%"`
	Q75    null.Float `json:"75%"`
	Max    null.Float `json:"max"`
}

// MDashboard is the payload of one analytics run.
type MDashboard struct {
	Tickers   []string      `json:"tickers"`
	Windows   []int         `json:"moving_average_windows"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Rows      int           `json:"rows"`
	Charts    []MChart      `json:"charts"`
	Summary   []MSummaryRow `json:"summary"`
}
