package spending

import "github.com/shopspring/decimal"

// Classify reports whether total strictly exceeds limit. Spending exactly the
// limit is not over. An unbounded limit is never exceeded.
func Classify(total decimal.Decimal, limit decimal.NullDecimal) bool {
	return limit.Valid && total.GreaterThan(limit.Decimal)
}
