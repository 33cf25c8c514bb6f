package storage

import (
	"context"
	"fmt"

	"stock-analytics/src/logger"
	"stock-analytics/src/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	sqlStore
	Config *models.MConfig
	Schema string
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) *PostgresDB {
	schema := cfg.Storage.Schema
	if schema == "" {
		schema = "public"
	}
	d := &PostgresDB{Config: cfg, Schema: schema}
	d.sqlStore = postgresStore(nil, schema, log)
	return d
}

// -----------------------------------------------------------------------------

// NewPostgresDBWithConn wraps an already open connection. Initialize will not reopen it.
func NewPostgresDBWithConn(db *sqlx.DB, schema string, log *logger.Logger) *PostgresDB {
	return &PostgresDB{Schema: schema, sqlStore: postgresStore(db, schema, log)}
}

func postgresStore(db *sqlx.DB, schema string, log *logger.Logger) sqlStore {
	table := fmt.Sprintf(`"%s"."stock_prices"`, schema)
	return sqlStore{
		DB:     db,
		Logger: log,
		table:  table,
		insertQuery: fmt.Sprintf(`
			INSERT INTO %s (date, ticker, adj_close)
			VALUES ($1, $2, $3)
			ON CONFLICT (date, ticker) DO NOTHING
		`, table),
		dateExpr: `to_char(date, 'YYYY-MM-DD')`,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	if d.DB == nil {
		db, err := sqlx.Open("postgres", d.Config.Storage.DBConnectionString)
		if err != nil {
			return err
		}
		d.DB = db
	}

	if err := d.DB.PingContext(ctx); err != nil {
		return err
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			date DATE NOT NULL,
			ticker VARCHAR(10) NOT NULL,
			adj_close DOUBLE PRECISION,
			CONSTRAINT unique_date_ticker UNIQUE (date, ticker)
		);
	`, d.table)
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create stock_prices: %w", err)
	}
	return nil
}
