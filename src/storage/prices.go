package storage

import (
	"context"
	"fmt"
	"sort"

	"stock-analytics/src/helpers"
	"stock-analytics/src/interfaces"
	"stock-analytics/src/logger"
	"stock-analytics/src/models"
	"stock-analytics/src/utils"

	"github.com/jmoiron/sqlx"
)

// priceRow is the scan target of stock_prices reads. Dates come back as YYYY-MM-DD text.
type priceRow struct {
	Date     string  `db:"date"`
	Ticker   string  `db:"ticker"`
	AdjClose float64 `db:"adj_close"`
}

// sqlStore holds the dialect-independent part of the stock_prices access.
type sqlStore struct {
	DB          *sqlx.DB
	Logger      *logger.Logger
	table       string // fully qualified, quoted when needed
	insertQuery string // must skip conflicting rows
	dateExpr    string // renders the date column as YYYY-MM-DD text
}

// -----------------------------------------------------------------------------

func (s *sqlStore) InsertPrices(ctx context.Context, records []models.MPriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if s.DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, s.insertQuery)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, utils.FormatDate(r.Date), r.Ticker, r.Price)
		if err != nil {
			return 0, fmt.Errorf("insert (%s, %s): %w", utils.FormatDate(r.Date), r.Ticker, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) DistinctTickers(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var tickers []string
	query := fmt.Sprintf(`SELECT DISTINCT ticker FROM %s`, s.table)
	if err := s.DB.SelectContext(ctx, &tickers, query); err != nil {
		return nil, err
	}
	sort.Strings(tickers)
	return tickers, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) LoadPrices(ctx context.Context, tickers []string) ([]models.MPriceRecord, error) {
	if len(tickers) == 0 {
		return nil, helpers.ErrEmptySelection
	}
	if s.DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT %s AS date, ticker, adj_close
		FROM %s
		WHERE ticker IN (?)
		ORDER BY date ASC, ticker ASC
	`, s.dateExpr, s.table), tickers)
	if err != nil {
		return nil, err
	}

	var rows []priceRow
	if err := s.DB.SelectContext(ctx, &rows, s.DB.Rebind(query), args...); err != nil {
		return nil, err
	}

	records := make([]models.MPriceRecord, 0, len(rows))
	for _, r := range rows {
		d, err := utils.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row (%s, %s): %w", r.Date, r.Ticker, err)
		}
		records = append(records, models.MPriceRecord{Date: d, Ticker: r.Ticker, Price: r.AdjClose})
	}
	return records, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Scoped acquisition
// -----------------------------------------------------------------------------

// Opener acquires an initialized store.
type Opener func(ctx context.Context) (interfaces.IDatabase, error)

// NewOpener returns the Opener for the configured database type.
func NewOpener(cfg *models.MConfig, log *logger.Logger) Opener {
	return func(ctx context.Context) (interfaces.IDatabase, error) {
		var db interfaces.IDatabase
		switch cfg.Storage.DBType {
		case "postgres":
			db = NewPostgresDB(cfg, logger.NewLogger(cfg, "PostgresDB"))
		case "sqlite", "":
			db = NewSQLiteDB(cfg, logger.NewLogger(cfg, "SQLiteDB"))
		default:
			return nil, helpers.NewConfigurationError(fmt.Sprintf("unsupported database type %q", cfg.Storage.DBType), nil)
		}

		if err := db.Initialize(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}
}

// -----------------------------------------------------------------------------

// WithDatabase acquires a store, runs fn and releases the store on every path.
// The result is fn's; a close failure is logged, never returned.
func WithDatabase(ctx context.Context, open Opener, log *logger.Logger, fn func(db interfaces.IDatabase) error) error {
	db, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warning("Failed to close database: %v", cerr)
		}
	}()

	return fn(db)
}
