package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"stock-analytics/src/models"
	"stock-analytics/src/utils"
)

// Header is the column layout of the long-format snapshot.
var Header = []string{"Date", "ticker", "adj_close"}

// -----------------------------------------------------------------------------

// WriteCSV writes records to path, replacing any previous snapshot. The file is
// written to a temporary name first so a failed run never leaves half a snapshot.
func WriteCSV(path string, records []models.MPriceRecord) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// -----------------------------------------------------------------------------

// Encode writes the header and one line per record.
func Encode(w io.Writer, records []models.MPriceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		line := []string{
			utils.FormatDate(r.Date),
			r.Ticker,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// -----------------------------------------------------------------------------

// ReadCSV loads a snapshot back, for audits and tests.
func ReadCSV(path string) ([]models.MPriceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(Header)

	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("snapshot %s has no header", path)
	}

	records := make([]models.MPriceRecord, 0, len(lines)-1)
	for i, line := range lines[1:] {
		d, err := utils.ParseDate(line[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		p, err := strconv.ParseFloat(line[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price %q: %w", i+2, line[2], err)
		}
		records = append(records, models.MPriceRecord{Date: d, Ticker: line[1], Price: p})
	}
	return records, nil
}
