package ingest

import (
	"time"

	datasource "stock-analytics/src/data_source"
	"stock-analytics/src/utils"
)

// CoverageWarnRatio is the share of expected sessions below which a ticker is reported.
const CoverageWarnRatio = 0.9

// Coverage compares the rows received for a ticker with the sessions its exchange held.
type Coverage struct {
	Ticker   string
	MIC      string
	Rows     int
	Expected int
}

func (c Coverage) Ratio() float64 {
	if c.Expected == 0 {
		return 1
	}
	return float64(c.Rows) / float64(c.Expected)
}

// -----------------------------------------------------------------------------

// coverage checks every successful fetch. The range is clipped to today so a
// configured end in the future does not count sessions that have not happened.
func (p *Pipeline) coverage(results []datasource.TickerResult, start, end time.Time) []Coverage {
	tomorrow := utils.NormalizeDate(p.now()).AddDate(0, 0, 1)
	if end.After(tomorrow) {
		end = tomorrow
	}

	out := make([]Coverage, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		cal := utils.GetCalendar(r.Ticker)
		out = append(out, Coverage{
			Ticker:   r.Ticker,
			MIC:      cal.MIC,
			Rows:     len(r.Records),
			Expected: cal.ExpectedSessions(start, end),
		})
	}
	return out
}
