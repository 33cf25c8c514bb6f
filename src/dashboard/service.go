package dashboard

import (
	"context"
	"errors"

	"stock-analytics/src/analysis"
	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/metrics"
	"stock-analytics/src/models"
)

// Service runs analytics against a store. Every call is an independent run;
// the store handle is the only shared state.
type Service struct {
	DB               interfaces.IDatabase
	Facade           *analysis.AnalysisFacade
	DefaultSelection int
	Logger           *logger.Logger
}

// Universe is the set of tickers known to the store and the default pick among them.
type Universe struct {
	Tickers  []string `json:"tickers"`
	Defaults []string `json:"defaults"`
}

// -----------------------------------------------------------------------------

func NewService(cfg *models.MConfig, db interfaces.IDatabase, log *logger.Logger) *Service {
	return &Service{
		DB:               db,
		Facade:           analysis.NewAnalysisFacade(cfg, log),
		DefaultSelection: cfg.Analytics.DefaultSelectionSize,
		Logger:           log,
	}
}

// -----------------------------------------------------------------------------

func (s *Service) Universe(ctx context.Context) (*Universe, error) {
	tickers, err := s.DB.DistinctTickers(ctx)
	if err != nil {
		return nil, helpers.NewStoreError("distinct tickers", err)
	}
	return &Universe{
		Tickers:  tickers,
		Defaults: analysis.DefaultSelection(tickers, s.DefaultSelection),
	}, nil
}

// -----------------------------------------------------------------------------

// Run builds the dashboard for the requested tickers. An empty request stops
// before the store is touched.
func (s *Service) Run(ctx context.Context, requested []string, windows []int) (*models.MDashboard, error) {
	records, err := s.load(ctx, requested)
	if err != nil {
		return nil, err
	}

	dashboard, err := s.Facade.BuildDashboard(records, windows)
	if err != nil {
		s.record(err)
		return nil, err
	}

	s.record(nil)
	s.Logger.Info("Dashboard for %v: %d rows, %d charts", dashboard.Tickers, dashboard.Rows, len(dashboard.Charts))
	return dashboard, nil
}

// -----------------------------------------------------------------------------

// Summary computes only the returns summary table.
func (s *Service) Summary(ctx context.Context, requested []string) ([]models.MSummaryRow, error) {
	records, err := s.load(ctx, requested)
	if err != nil {
		return nil, err
	}

	prices, err := analysis.Reshape(records)
	if err != nil {
		s.record(err)
		return nil, err
	}

	s.record(nil)
	return s.Facade.Summarize(analysis.Returns(prices)), nil
}

// -----------------------------------------------------------------------------

func (s *Service) load(ctx context.Context, requested []string) ([]models.MPriceRecord, error) {
	if len(requested) == 0 {
		s.record(helpers.ErrEmptySelection)
		return nil, helpers.ErrEmptySelection
	}

	universe, err := s.DB.DistinctTickers(ctx)
	if err != nil {
		err = helpers.NewStoreError("distinct tickers", err)
		s.record(err)
		return nil, err
	}

	selected, err := analysis.SelectTickers(universe, requested)
	if err != nil {
		s.record(err)
		return nil, err
	}

	records, err := s.DB.LoadPrices(ctx, selected)
	if err != nil {
		err = helpers.NewStoreError("load prices", err)
		s.record(err)
		return nil, err
	}

	s.Logger.Debug("Loaded %d rows for %v", len(records), selected)
	return records, nil
}

// -----------------------------------------------------------------------------

func (s *Service) record(err error) {
	switch {
	case err == nil:
		metrics.RecordDashboardRun("ok")
	case errors.Is(err, helpers.ErrEmptySelection):
		metrics.RecordDashboardRun("empty_selection")
	default:
		metrics.RecordDashboardRun("error")
	}
}
