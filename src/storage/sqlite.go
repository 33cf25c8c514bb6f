package storage

import (
	"context"
	"fmt"

	"stock-analytics/src/logger"
	"stock-analytics/src/models"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite"; make sure sqlx rebinds to '?'
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	sqlStore
	Config *models.MConfig
	Path   string
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) *SQLiteDB {
	return &SQLiteDB{
		Config:   cfg,
		Path:     cfg.Storage.DBPath,
		sqlStore: sqliteStore(log),
	}
}

func sqliteStore(log *logger.Logger) sqlStore {
	return sqlStore{
		Logger: log,
		table:  "stock_prices",
		insertQuery: `
			INSERT OR IGNORE INTO stock_prices (date, ticker, adj_close)
			VALUES (?, ?, ?)
		`,
		dateExpr: "date",
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize(ctx context.Context) error {
	if err := ensureParentDir(d.Path); err != nil {
		return err
	}

	db, err := sqlx.Open("sqlite", d.Path)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}

	d.Logger.Info("SQLiteDB initialized successfully (%s)", d.Path)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables(ctx context.Context) error {
	// Dates are stored as YYYY-MM-DD text so they sort and compare as days
	query := `
		CREATE TABLE IF NOT EXISTS stock_prices (
			date TEXT NOT NULL,
			ticker TEXT NOT NULL,
			adj_close REAL,
			UNIQUE (date, ticker)
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create stock_prices: %w", err)
	}
	return nil
}
