package analysis

import (
	"fmt"
	"time"

	"stock-analytics/src/analysis/core"
	"stock-analytics/src/logger"
	"stock-analytics/src/models"
	"stock-analytics/src/utils"

	"github.com/guregu/null/v6"
)

// DerivedTables holds every view computed from one selection.
type DerivedTables struct {
	Prices         *WideTable
	Returns        *WideTable
	Cumulative     *WideTable
	MovingAverages map[int]*WideTable
}

type AnalysisFacade struct {
	Config  *models.MConfig
	Windows []int
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	windows := cfg.Analytics.MovingAverageWindows
	if len(windows) == 0 {
		windows = []int{20, 50}
	}

	return &AnalysisFacade{
		Config:  cfg,
		Windows: windows,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Derive reshapes the long table and computes returns, cumulative returns and one
// moving average per window.
func (a *AnalysisFacade) Derive(records []models.MPriceRecord, windows []int) (*DerivedTables, error) {
	if len(windows) == 0 {
		windows = a.Windows
	}

	prices, err := Reshape(records)
	if err != nil {
		a.Logger.Error("Reshape failed: %v", err)
		return nil, err
	}

	returns := Returns(prices)
	tables := &DerivedTables{
		Prices:         prices,
		Returns:        returns,
		Cumulative:     CumulativeReturns(returns),
		MovingAverages: make(map[int]*WideTable, len(windows)),
	}

	for _, w := range windows {
		ma, err := MovingAverage(prices, w)
		if err != nil {
			return nil, err
		}
		tables.MovingAverages[w] = ma
	}

	a.Logger.Debug("Derived %d rows x %d tickers (%d windows)", prices.Len(), len(prices.Tickers), len(windows))
	return tables, nil
}

// -----------------------------------------------------------------------------

// Summarize describes the returns distribution of each column.
func (a *AnalysisFacade) Summarize(returns *WideTable) []models.MSummaryRow {
	rows := make([]models.MSummaryRow, 0, len(returns.Tickers))
	for _, ticker := range returns.Tickers {
		d := core.Describe(returns.Column(ticker))
		rows = append(rows, models.MSummaryRow{
			Ticker: ticker,
			Count:  d.Count,
			Mean:   d.Mean,
			Std:    d.Std,
			Min:    d.Min,
			Q25:    d.Q25,
			Median: d.Median,
			Q75:    d.Q75,
			Max:    d.Max,
		})
	}
	return rows
}

// -----------------------------------------------------------------------------

// BuildDashboard runs the full analytics chain for already-loaded records.
func (a *AnalysisFacade) BuildDashboard(records []models.MPriceRecord, windows []int) (*models.MDashboard, error) {
	if len(windows) == 0 {
		windows = a.Windows
	}

	tables, err := a.Derive(records, windows)
	if err != nil {
		return nil, err
	}

	dashboard := &models.MDashboard{
		Tickers: tables.Prices.Tickers,
		Windows: windows,
		Rows:    tables.Prices.Len(),
		Charts:  BuildCharts(tables, windows),
		Summary: a.Summarize(tables.Returns),
	}
	if n := tables.Prices.Len(); n > 0 {
		dashboard.StartDate = utils.FormatDate(tables.Prices.Dates[0])
		dashboard.EndDate = utils.FormatDate(tables.Prices.Dates[n-1])
	}
	return dashboard, nil
}

// -----------------------------------------------------------------------------

// BuildCharts renders one chart per derived view, in dashboard order: prices,
// daily returns, moving averages (one chart per ticker), cumulative returns.
func BuildCharts(tables *DerivedTables, windows []int) []models.MChart {
	charts := []models.MChart{
		tableChart("Adjusted Close Prices", "Price ($)", tables.Prices),
	}

	returnsChart := tableChart("Daily Returns", "Return", tables.Returns)
	returnsChart.ReferenceLines = []models.MReferenceLine{{Value: 0, Style: "dashed", Color: "red"}}
	charts = append(charts, returnsChart)

	for _, ticker := range tables.Prices.Tickers {
		chart := models.MChart{
			Title:  fmt.Sprintf("Moving Averages: %s", ticker),
			XLabel: "Date",
			YLabel: "Price ($)",
			Series: []models.MSeries{
				columnSeries(ticker+" Price", tables.Prices.Dates, tables.Prices.Column(ticker)),
			},
		}
		for _, w := range windows {
			ma := tables.MovingAverages[w]
			if ma == nil {
				continue
			}
			chart.Series = append(chart.Series, columnSeries(fmt.Sprintf("MA-%d", w), ma.Dates, ma.Column(ticker)))
		}
		charts = append(charts, chart)
	}

	charts = append(charts, tableChart("Cumulative Returns", "Cumulative Return", tables.Cumulative))
	return charts
}

// -----------------------------------------------------------------------------

func tableChart(title, yLabel string, t *WideTable) models.MChart {
	chart := models.MChart{Title: title, XLabel: "Date", YLabel: yLabel}
	for _, ticker := range t.Tickers {
		chart.Series = append(chart.Series, columnSeries(ticker, t.Dates, t.Column(ticker)))
	}
	return chart
}

func columnSeries(name string, dates []time.Time, col []null.Float) models.MSeries {
	s := models.MSeries{Name: name, Points: make([]models.MPoint, len(dates))}
	for i, d := range dates {
		s.Points[i] = models.MPoint{Date: utils.FormatDate(d), Value: col[i]}
	}
	return s
}
