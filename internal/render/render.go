// Package render writes spending reports as a text table, CSV or JSON.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/spending"
)

// Format is an output format name.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// CSVHeader is the header row of CSV output.
const CSVHeader = "category,total,limit,remaining,over_limit"

const unbounded = "-"

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv or json)", s)
	}
}

// Report writes r to w in format f.
func Report(w io.Writer, f Format, r spending.Report) error {
	switch f {
	case FormatTable:
		return Table(w, r)
	case FormatCSV:
		return CSV(w, r)
	case FormatJSON:
		return JSON(w, r)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// Table writes an aligned text table with a total row.
func Table(w io.Writer, r spending.Report) error {
	fmt.Fprintf(w, "Spending for %s as of %s\n\n", r.Window, r.Now.Format("2006-01-02"))
	if len(r.Categories) == 0 {
		_, err := fmt.Fprintln(w, "No transactions in this window.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tTOTAL\tLIMIT\tREMAINING\tSTATUS\t")
	for _, c := range r.Categories {
		status := "ok"
		if c.OverLimit {
			status = "OVER"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", c.Name, money(c.Total), limit(c.Limit), remaining(c), status)
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t\t\t\t\n", money(r.Total()))
	return tw.Flush()
}

// CSV writes one row per category.
func CSV(w io.Writer, r spending.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range r.Categories {
		row := []string{c.Name, money(c.Total), limit(c.Limit), remaining(c), strconv.FormatBool(c.OverLimit)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonReport struct {
	Window     string                  `json:"window"`
	Now        time.Time               `json:"now"`
	Total      decimal.Decimal         `json:"total"`
	Categories []model.CategorySummary `json:"categories"`
	Series     spending.Series         `json:"series"`
	Rejected   int                     `json:"rejected_transactions"`
	Conflicts  int                     `json:"limit_conflicts"`
}

// JSON writes the report with its chart series.
func JSON(w io.Writer, r spending.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	cats := r.Categories
	if cats == nil {
		cats = []model.CategorySummary{}
	}
	return enc.Encode(jsonReport{
		Window:     r.Window.Label,
		Now:        r.Now,
		Total:      r.Total(),
		Categories: cats,
		Series:     r.Series(),
		Rejected:   len(r.Rejected),
		Conflicts:  len(r.Conflicts),
	})
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func limit(l decimal.NullDecimal) string {
	if !l.Valid {
		return unbounded
	}
	return money(l.Decimal)
}

func remaining(c model.CategorySummary) string {
	rem, ok := c.Remaining()
	if !ok {
		return unbounded
	}
	return money(rem)
}
