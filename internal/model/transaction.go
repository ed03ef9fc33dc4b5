package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("amount spent must be positive")
	ErrZeroDate      = errors.New("transaction date cannot be zero")
)

// Transaction is a single dated spending event assigned to one category.
type Transaction struct {
	ID         int             `json:"id"`
	UserID     string          `json:"user_id"`
	CategoryID int             `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Note       string          `json:"note,omitempty"`

	// Category is the joined category row when the snapshot carries one.
	// Stores leave it nil; the category snapshot takes precedence.
	Category *Category `json:"category,omitempty"`
}

// Validate checks the transaction invariants.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
