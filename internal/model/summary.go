package model

import "github.com/shopspring/decimal"

// CategorySummary is the per-category spend against its limit within a window.
// It is derived on every report and never stored.
type CategorySummary struct {
	Name       string              `json:"name"`
	CategoryID int                 `json:"category_id,omitempty"` // 0 for Uncategorized
	Total      decimal.Decimal     `json:"total"`
	Limit      decimal.NullDecimal `json:"limit"`
	OverLimit  bool                `json:"over_limit"`
}

// Remaining returns limit minus total, and false when the category is unbounded.
// It is negative for over-limit categories.
func (s CategorySummary) Remaining() (decimal.Decimal, bool) {
	if !s.Limit.Valid {
		return decimal.Zero, false
	}
	return s.Limit.Decimal.Sub(s.Total), true
}
