// Package window maps named lookback ranges to durations.
package window

import (
	"strings"
	"time"
)

const day = 24 * time.Hour

// Window is a named lookback range. Days is ignored when Unbounded is set.
type Window struct {
	Label     string
	Days      int
	Unbounded bool
}

var (
	OneMonth    = Window{Label: "1 Month", Days: 30}
	ThreeMonths = Window{Label: "3 Months", Days: 90}
	SixMonths   = Window{Label: "6 Months", Days: 180}
	OneYear     = Window{Label: "1 Year", Days: 365}
	FiveYears   = Window{Label: "5 Years", Days: 1825}
	AllTime     = Window{Label: "All Time", Unbounded: true}
)

var all = []Window{OneMonth, ThreeMonths, SixMonths, OneYear, FiveYears, AllTime}

var aliases = map[string]Window{
	"1m":  OneMonth,
	"3m":  ThreeMonths,
	"6m":  SixMonths,
	"1y":  OneYear,
	"5y":  FiveYears,
	"all": AllTime,
}

// All returns every window from shortest to unbounded.
func All() []Window {
	out := make([]Window, len(all))
	copy(out, all)
	return out
}

// Labels returns the display labels of All.
func Labels() []string {
	labels := make([]string, len(all))
	for i, w := range all {
		labels[i] = w.Label
	}
	return labels
}

// Parse resolves a label or short alias, ignoring case and surrounding space.
// Unknown labels return AllTime and false.
func Parse(label string) (Window, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(label), " "))
	for _, w := range all {
		if strings.ToLower(w.Label) == key {
			return w, true
		}
	}
	if w, ok := aliases[key]; ok {
		return w, true
	}
	return AllTime, false
}

// Lookup is Parse without the found flag. Unknown labels fail closed to AllTime.
func Lookup(label string) Window {
	w, _ := Parse(label)
	return w
}

// Valid reports whether w is unbounded or spans at least one day. The zero
// Window is not valid.
func (w Window) Valid() bool {
	return w.Unbounded || w.Days > 0
}

// Duration returns the lookback and true, or false for an unbounded window.
func (w Window) Duration() (time.Duration, bool) {
	if w.Unbounded {
		return 0, false
	}
	return time.Duration(w.Days) * day, true
}

// Includes reports whether something elapsed ago falls inside the window.
// Negative elapsed times (future dates) are always included.
func (w Window) Includes(elapsed time.Duration) bool {
	d, bounded := w.Duration()
	return !bounded || elapsed <= d
}

// Less orders windows by length, unbounded last.
func (w Window) Less(other Window) bool {
	if w.Unbounded {
		return false
	}
	return other.Unbounded || w.Days < other.Days
}

func (w Window) String() string {
	return w.Label
}
