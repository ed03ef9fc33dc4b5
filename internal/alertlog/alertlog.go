// Package alertlog keeps an append-only CSV record of over-limit categories
// seen by reports.
package alertlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/spending"
)

// Alert is one row in the alert log.
type Alert struct {
	Timestamp time.Time
	UserID    string
	Window    string
	Category  string
	Total     decimal.Decimal
	Limit     decimal.Decimal
}

// Header is the CSV header for alerts.csv.
const Header = "timestamp,user_id,window,category,total,limit"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/alerts.csv"
	colTimestamp = 0
	colUser      = 1
	colWindow    = 2
	colCategory  = 3
	colTotal     = 4
	colLimit     = 5
)

// FromReport returns an alert for every over-limit category in r.
func FromReport(userID string, r spending.Report) []Alert {
	var alerts []Alert
	for _, c := range r.OverLimit() {
		alerts = append(alerts, Alert{
			Timestamp: r.Now,
			UserID:    userID,
			Window:    r.Window.Label,
			Category:  c.Name,
			Total:     c.Total,
			Limit:     c.Limit.Decimal,
		})
	}
	return alerts
}

// MarshalAlert converts an Alert to a CSV row.
func MarshalAlert(a Alert) []string {
	row := make([]string, numFields)
	row[colTimestamp] = a.Timestamp.UTC().Format(time.RFC3339)
	row[colUser] = a.UserID
	row[colWindow] = a.Window
	row[colCategory] = a.Category
	row[colTotal] = a.Total.StringFixed(2)
	row[colLimit] = a.Limit.StringFixed(2)
	return row
}

// UnmarshalAlert converts a CSV row to an Alert.
func UnmarshalAlert(record []string) (Alert, error) {
	if len(record) != numFields {
		return Alert{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Alert{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	total, err := decimal.NewFromString(record[colTotal])
	if err != nil {
		return Alert{}, fmt.Errorf("parsing total %q: %w", record[colTotal], err)
	}
	limit, err := decimal.NewFromString(record[colLimit])
	if err != nil {
		return Alert{}, fmt.Errorf("parsing limit %q: %w", record[colLimit], err)
	}

	return Alert{
		Timestamp: ts,
		UserID:    record[colUser],
		Window:    record[colWindow],
		Category:  record[colCategory],
		Total:     total,
		Limit:     limit,
	}, nil
}

// Append writes alerts to <dataDir>/logs/alerts.csv, creating the file and header if needed.
func Append(dataDir string, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	dir := filepath.Join(dataDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dataDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening alert log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, a := range alerts {
		if err := cw.Write(MarshalAlert(a)); err != nil {
			return fmt.Errorf("writing alert %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all alerts from <dataDir>/logs/alerts.csv.
// Returns an empty slice if the file does not exist.
func Read(dataDir string) ([]Alert, error) {
	f, err := os.Open(filepath.Join(dataDir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening alert log: %w", err)
	}
	defer f.Close()

	return readAlerts(f)
}

func readAlerts(r io.Reader) ([]Alert, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading alert log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var alerts []Alert
	for i, rec := range records[1:] {
		a, err := UnmarshalAlert(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
