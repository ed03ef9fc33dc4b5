package spending

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/window"
)

// ErrInvalidNow is returned when the caller does not supply a reference time.
var ErrInvalidNow = errors.New("reference time is zero")

// ErrInvalidWindow is returned for a zero or non-positive window. Callers
// resolve labels with window.Parse, which never yields one.
var ErrInvalidWindow = errors.New("window is neither bounded by days nor unbounded")

// Input is one snapshot to summarize.
type Input struct {
	Now          time.Time
	Window       window.Window
	Transactions []model.Transaction
	Categories   []model.Category
}

// Report is the result of one pipeline run.
type Report struct {
	Now        time.Time
	Window     window.Window
	Categories []model.CategorySummary

	// Rejected lists in-window transactions excluded for a non-positive amount.
	Rejected  []model.Transaction
	Conflicts []LimitConflict
}

// Series is the chart-friendly view of a report: one entry per category,
// index-aligned.
type Series struct {
	Names     []string          `json:"names"`
	Totals    []decimal.Decimal `json:"totals"`
	OverLimit []bool            `json:"over_limit"`
}

// Build converts an aggregation into summaries, keeping bucket order.
func Build(agg Aggregation) []model.CategorySummary {
	out := make([]model.CategorySummary, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		out = append(out, model.CategorySummary{
			Name:       b.Name,
			CategoryID: b.CategoryID,
			Total:      b.Total,
			Limit:      b.Limit,
			OverLimit:  Classify(b.Total, b.Limit),
		})
	}
	return out
}

// Summarize runs the full pipeline over in.
func Summarize(in Input) (Report, error) {
	if in.Now.IsZero() {
		return Report{}, ErrInvalidNow
	}
	if !in.Window.Valid() {
		return Report{}, fmt.Errorf("%w: %+v", ErrInvalidWindow, in.Window)
	}

	filtered := Filter(in.Now, in.Window, in.Transactions)
	agg := Aggregate(filtered, in.Categories)

	return Report{
		Now:        in.Now,
		Window:     in.Window,
		Categories: Build(agg),
		Rejected:   agg.Rejected,
		Conflicts:  agg.Conflicts,
	}, nil
}

// Series splits the report into parallel name, total and over-limit slices.
func (r Report) Series() Series {
	s := Series{
		Names:     make([]string, len(r.Categories)),
		Totals:    make([]decimal.Decimal, len(r.Categories)),
		OverLimit: make([]bool, len(r.Categories)),
	}
	for i, c := range r.Categories {
		s.Names[i] = c.Name
		s.Totals[i] = c.Total
		s.OverLimit[i] = c.OverLimit
	}
	return s
}

// Total is the sum of all category totals.
func (r Report) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range r.Categories {
		sum = sum.Add(c.Total)
	}
	return sum
}

// OverLimit returns the categories over their limit, in report order.
func (r Report) OverLimit() []model.CategorySummary {
	var out []model.CategorySummary
	for _, c := range r.Categories {
		if c.OverLimit {
			out = append(out, c)
		}
	}
	return out
}
