package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/model"
)

// DefaultCategories returns the starter categories for a new user. Ids are
// left zero for the store to assign.
func DefaultCategories(userID string) []model.Category {
	limit := func(s string) decimal.NullDecimal {
		return model.NewLimit(decimal.RequireFromString(s))
	}
	return []model.Category{
		{UserID: userID, Name: "Food", Limit: limit("500")},
		{UserID: userID, Name: "Rent", Limit: limit("1200")},
		{UserID: userID, Name: "Transportation", Limit: limit("300")},
		{UserID: userID, Name: "Entertainment", Limit: limit("200")},
		{UserID: userID, Name: "Utilities"},
	}
}

// Seed adds categories to s in order and returns them with their assigned ids.
func Seed(ctx context.Context, s Store, cats []model.Category) ([]model.Category, error) {
	out := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		added, err := s.AddCategory(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("seeding category %q: %w", c.Name, err)
		}
		out = append(out, added)
	}
	return out, nil
}

// NextID returns one more than the largest of ids and issued, the highest id
// ever handed out. Deleted ids are never returned again.
func NextID(ids []int, issued int) int {
	maxID := issued
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}
