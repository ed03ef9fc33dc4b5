package spending

import (
	"time"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/window"
)

// Filter returns the transactions dated within w of now, in input order.
// Transactions dated after now are kept.
func Filter(now time.Time, w window.Window, txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if w.Includes(now.Sub(t.Date)) {
			out = append(out, t)
		}
	}
	return out
}
