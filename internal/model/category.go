package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// UncategorizedName is the bucket for transactions whose category cannot be resolved.
const UncategorizedName = "Uncategorized"

var (
	ErrEmptyName    = errors.New("empty category name")
	ErrInvalidLimit = errors.New("spend limit must be positive")
	ErrReservedName = errors.New("category name is reserved")
)

// Category is a user-defined spending bucket. An invalid Limit means unbounded.
type Category struct {
	ID     int                 `json:"id"`
	UserID string              `json:"user_id"`
	Name   string              `json:"name"`
	Limit  decimal.NullDecimal `json:"limit"`
}

// Uncategorized returns the synthetic category used for unresolved references.
func Uncategorized() Category {
	return Category{Name: UncategorizedName}
}

// Bounded reports whether the category has a spend limit.
func (c Category) Bounded() bool {
	return c.Limit.Valid
}

// IsReservedName reports whether name would collide with the Uncategorized
// bucket, ignoring case and surrounding space.
func IsReservedName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), UncategorizedName)
}

// Validate checks the category invariants: a name that is not reserved, and a
// positive limit if any.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if IsReservedName(c.Name) {
		return ErrReservedName
	}
	if c.Limit.Valid && !c.Limit.Decimal.IsPositive() {
		return ErrInvalidLimit
	}
	return nil
}

// NewLimit wraps a spend limit. Use NoLimit for unbounded categories.
func NewLimit(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// NoLimit is the unbounded limit.
func NoLimit() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// SameLimit reports whether two limits are equal, treating two unbounded limits as equal.
func SameLimit(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
