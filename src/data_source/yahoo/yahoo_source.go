package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/models"
	"stock-analytics/src/utils"
)

type YahooFinanceSource struct {
	Config  *models.MConfig
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	return &YahooFinanceSource{
		Config:  cfg,
		BaseURL: strings.TrimRight(cfg.Ingestion.BaseURL, "/"),
		Network: netMgr,
		Logger:  logger.NewLogger(cfg, "YahooFinanceSource"),
	}
}

// -----------------------------------------------------------------------------

// FetchDaily fetches daily bars for [start, end) and keeps the adjusted close.
func (s *YahooFinanceSource) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]models.MPriceRecord, error) {
	params := map[string]string{
		"interval":       "1d",
		"period1":        strconv.FormatInt(start.Unix(), 10),
		"period2":        strconv.FormatInt(end.Unix(), 10),
		"events":         "div,splits",
		"includePrePost": "false",
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s", s.BaseURL, ticker)

	respBytes, err := s.Network.Get(ctx, url, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", ticker, err)
	}

	records, err := s.parseChartResponse(ticker, respBytes)
	if err != nil {
		return nil, err
	}

	// period2 is not strictly exclusive on the provider side
	filtered := records[:0]
	for _, r := range records {
		if !r.Date.Before(utils.NormalizeDate(start)) && r.Date.Before(utils.NormalizeDate(end)) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				Symbol               string `json:"symbol"`
				ExchangeName         string `json:"exchangeName"`
				InstrumentType       string `json:"instrumentType"`
				Gmtoffset            int64  `json:"gmtoffset"`
				Timezone             string `json:"timezone"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				DataGranularity      string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"` // Use pointers to handle null
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

// parseChartResponse turns a chart payload into long-format records. An empty series is
// not an error: the caller decides what "no data" means.
func (s *YahooFinanceSource) parseChartResponse(ticker string, data []byte) ([]models.MPriceRecord, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Timestamp) == 0 {
		return []models.MPriceRecord{}, nil
	}

	result := resp.Chart.Result[0]
	meta := result.Meta

	// 1. Pick the price column: adjusted close when present, close otherwise
	var prices []*float64
	if adj := result.Indicators.AdjClose; len(adj) > 0 && len(adj[0].AdjClose) > 0 {
		prices = adj[0].AdjClose
	} else if q := result.Indicators.Quote; len(q) > 0 {
		prices = q[0].Close
		s.Logger.Debug("No adjclose for %s, falling back to close", ticker)
	}

	if len(prices) != len(result.Timestamp) {
		return nil, fmt.Errorf("data alignment error for %s: %d timestamps, %d prices", ticker, len(result.Timestamp), len(prices))
	}

	// 2. Bars are stamped at the session open; the calendar day is the exchange-local one
	loc := exchangeLocation(meta.ExchangeTimezoneName, meta.Gmtoffset)

	records := make([]models.MPriceRecord, 0, len(prices))
	for i, ts := range result.Timestamp {
		p := prices[i]
		if p == nil || *p <= 0 {
			s.Logger.Debug("Skipping invalid point for %s at index %d", ticker, i)
			continue
		}
		records = append(records, models.MPriceRecord{
			Date:   utils.NormalizeDate(time.Unix(ts, 0).In(loc)),
			Ticker: ticker,
			Price:  *p,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	if len(records) > 0 {
		s.Logger.Info("Fetched %s: %d valid points [%s -> %s]", ticker, len(records),
			utils.FormatDate(records[0].Date), utils.FormatDate(records[len(records)-1].Date))
	}
	return records, nil
}

// -----------------------------------------------------------------------------

func exchangeLocation(name string, gmtoffset int64) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", int(gmtoffset))
}
