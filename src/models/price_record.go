package models

import "time"

// MPriceRecord is one long-format observation: the adjusted close of a ticker on a calendar day.
// Date is always UTC midnight.
type MPriceRecord struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Price  float64   `json:"adj_close"`
}

// MIngestReport summarizes one ingestion run.
type MIngestReport struct {
	Requested    []string `json:"requested"`
	Fetched      []string `json:"fetched"`
	Skipped      []string `json:"skipped"`
	RowsFetched  int      `json:"rows_fetched"`
	RowsInserted int64    `json:"rows_inserted"`
	Persisted    bool     `json:"persisted"`
	SnapshotPath string   `json:"snapshot_path"`
}
