// Package storetest runs the same behavioural tests against every store backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/store"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

var day = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"AddAndListCategories", testAddAndListCategories},
		{"CategoryValidation", testCategoryValidation},
		{"UpdateCategory", testUpdateCategory},
		{"DeleteCategoryKeepsTransactions", testDeleteCategoryKeepsTransactions},
		{"DeleteThenAddDoesNotReuseID", testDeleteThenAddDoesNotReuseID},
		{"AddTransaction", testAddTransaction},
		{"TransactionValidation", testTransactionValidation},
		{"UpdateTransaction", testUpdateTransaction},
		{"DeleteTransaction", testDeleteTransaction},
		{"TransactionsByCategory", testTransactionsByCategory},
		{"UsersAreIsolated", testUsersAreIsolated},
		{"Snapshot", testSnapshot},
		{"EmptySnapshot", testEmptySnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func addCategory(t *testing.T, s store.Store, userID, name, limit string) model.Category {
	t.Helper()
	c := model.Category{UserID: userID, Name: name}
	if limit != "" {
		c.Limit = model.NewLimit(dec(limit))
	}
	added, err := s.AddCategory(context.Background(), c)
	require.NoError(t, err)
	return added
}

func addTransaction(t *testing.T, s store.Store, userID string, categoryID int, amount string) model.Transaction {
	t.Helper()
	added, err := s.AddTransaction(context.Background(), model.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     dec(amount),
		Date:       day,
		Note:       "lunch, with \"quotes\"",
	})
	require.NoError(t, err)
	return added
}

func testAddAndListCategories(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	misc := addCategory(t, s, "u1", "Misc", "")

	assert.NotZero(t, food.ID)
	assert.NotEqual(t, food.ID, misc.ID)

	cats, err := s.Categories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Food", cats[0].Name)
	assert.True(t, cats[0].Limit.Valid)
	assert.True(t, cats[0].Limit.Decimal.Equal(dec("500")))
	assert.Equal(t, "Misc", cats[1].Name)
	assert.False(t, cats[1].Limit.Valid)

	got, err := s.Category(ctx, "u1", food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Name)

	_, err = s.Category(ctx, "u1", 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testCategoryValidation(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.AddCategory(ctx, model.Category{UserID: "u1", Name: ""})
	assert.ErrorIs(t, err, model.ErrEmptyName)

	_, err = s.AddCategory(ctx, model.Category{UserID: "u1", Name: "Food", Limit: model.NewLimit(dec("-10"))})
	assert.ErrorIs(t, err, model.ErrInvalidLimit)

	_, err = s.AddCategory(ctx, model.Category{UserID: "u1", Name: "uncategorized"})
	assert.ErrorIs(t, err, model.ErrReservedName)

	cats, err := s.Categories(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func testUpdateCategory(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")

	food.Name = "Groceries"
	food.Limit = model.NoLimit()
	require.NoError(t, s.UpdateCategory(ctx, food))

	got, err := s.Category(ctx, "u1", food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	assert.False(t, got.Limit.Valid)

	missing := food
	missing.ID = 9999
	assert.ErrorIs(t, s.UpdateCategory(ctx, missing), store.ErrNotFound)
}

func testDeleteCategoryKeepsTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	addTransaction(t, s, "u1", food.ID, "12.50")

	require.NoError(t, s.DeleteCategory(ctx, "u1", food.ID))
	assert.ErrorIs(t, s.DeleteCategory(ctx, "u1", food.ID), store.ErrNotFound)

	txns, err := s.Transactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, food.ID, txns[0].CategoryID)
}

func testDeleteThenAddDoesNotReuseID(t *testing.T, s store.Store) {
	ctx := context.Background()
	addCategory(t, s, "u1", "Food", "500")
	gifts := addCategory(t, s, "u1", "Gifts", "")
	orphan := addTransaction(t, s, "u1", gifts.ID, "80")

	require.NoError(t, s.DeleteCategory(ctx, "u1", gifts.ID))
	require.NoError(t, s.DeleteTransaction(ctx, "u1", orphan.ID))
	kept := addTransaction(t, s, "u1", addCategory(t, s, "u1", "Misc", "").ID, "5")
	assert.Greater(t, kept.ID, orphan.ID, "transaction ids are not reused")

	// Recreate the orphan situation: a transaction left behind by a deleted category.
	party := addCategory(t, s, "u1", "Party", "")
	left := addTransaction(t, s, "u1", party.ID, "80")
	require.NoError(t, s.DeleteCategory(ctx, "u1", party.ID))

	rent := addCategory(t, s, "u1", "Rent", "10")
	assert.Greater(t, rent.ID, party.ID)
	assert.NotEqual(t, gifts.ID, rent.ID)

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	for _, c := range snap.Categories {
		assert.NotEqual(t, left.CategoryID, c.ID, "orphaned transaction must not resolve to %s", c.Name)
	}
}

func testAddTransaction(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	first := addTransaction(t, s, "u1", food.ID, "12.50")
	second := addTransaction(t, s, "u1", food.ID, "0.99")
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	txns, err := s.Transactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, first.ID, txns[0].ID)
	assert.True(t, txns[0].Amount.Equal(dec("12.50")))
	assert.True(t, txns[0].Date.Equal(day), "date %s should survive storage", txns[0].Date)
	assert.Equal(t, "lunch, with \"quotes\"", txns[0].Note)
	assert.Equal(t, "u1", txns[0].UserID)

	got, err := s.Transaction(ctx, "u1", second.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(dec("0.99")))
}

func testTransactionValidation(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")

	_, err := s.AddTransaction(ctx, model.Transaction{UserID: "u1", CategoryID: food.ID, Amount: dec("0"), Date: day})
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = s.AddTransaction(ctx, model.Transaction{UserID: "u1", CategoryID: food.ID, Amount: dec("1")})
	assert.ErrorIs(t, err, model.ErrZeroDate)

	_, err = s.AddTransaction(ctx, model.Transaction{UserID: "u1", CategoryID: 9999, Amount: dec("1"), Date: day})
	assert.ErrorIs(t, err, store.ErrNotFound)

	txns, err := s.Transactions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func testUpdateTransaction(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	rent := addCategory(t, s, "u1", "Rent", "1200")
	tx := addTransaction(t, s, "u1", food.ID, "12.50")

	tx.CategoryID = rent.ID
	tx.Amount = dec("1100")
	tx.Date = day.AddDate(0, 1, 0)
	tx.Note = ""
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	got, err := s.Transaction(ctx, "u1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, rent.ID, got.CategoryID)
	assert.True(t, got.Amount.Equal(dec("1100")))
	assert.True(t, got.Date.Equal(day.AddDate(0, 1, 0)))
	assert.Empty(t, got.Note)

	tx.CategoryID = 9999
	assert.ErrorIs(t, s.UpdateTransaction(ctx, tx), store.ErrNotFound)

	tx.CategoryID = rent.ID
	tx.Amount = dec("-1")
	assert.ErrorIs(t, s.UpdateTransaction(ctx, tx), model.ErrInvalidAmount)

	tx.Amount = dec("1")
	tx.ID = 9999
	assert.ErrorIs(t, s.UpdateTransaction(ctx, tx), store.ErrNotFound)
}

func testDeleteTransaction(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	first := addTransaction(t, s, "u1", food.ID, "1")
	second := addTransaction(t, s, "u1", food.ID, "2")

	require.NoError(t, s.DeleteTransaction(ctx, "u1", first.ID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "u1", first.ID), store.ErrNotFound)

	txns, err := s.Transactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, second.ID, txns[0].ID)
}

func testTransactionsByCategory(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	rent := addCategory(t, s, "u1", "Rent", "1200")
	addTransaction(t, s, "u1", food.ID, "1")
	addTransaction(t, s, "u1", rent.ID, "2")
	addTransaction(t, s, "u1", food.ID, "3")

	txns, err := s.TransactionsByCategory(ctx, "u1", food.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.True(t, txns[0].Amount.Equal(dec("1")))
	assert.True(t, txns[1].Amount.Equal(dec("3")))
}

func testUsersAreIsolated(t *testing.T, s store.Store) {
	ctx := context.Background()
	mine := addCategory(t, s, "u1", "Food", "500")
	theirs := addCategory(t, s, "u2", "Food", "50")
	addTransaction(t, s, "u2", theirs.ID, "20")

	_, err := s.Category(ctx, "u1", theirs.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.AddTransaction(ctx, model.Transaction{UserID: "u1", CategoryID: theirs.ID, Amount: dec("1"), Date: day})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteCategory(ctx, "u1", theirs.ID), store.ErrNotFound)

	cats, err := s.Categories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, mine.ID, cats[0].ID)

	txns, err := s.Transactions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func testSnapshot(t *testing.T, s store.Store) {
	ctx := context.Background()
	food := addCategory(t, s, "u1", "Food", "500")
	rent := addCategory(t, s, "u1", "Rent", "1200")
	addTransaction(t, s, "u1", food.ID, "300")
	addTransaction(t, s, "u1", rent.ID, "1200")
	other := addCategory(t, s, "u2", "Other", "")
	addTransaction(t, s, "u2", other.ID, "1")

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", snap.UserID)
	assert.Len(t, snap.Categories, 2)
	assert.Len(t, snap.Transactions, 2)
	for _, tx := range snap.Transactions {
		assert.Equal(t, "u1", tx.UserID)
	}
}

func testEmptySnapshot(t *testing.T, s store.Store) {
	snap, err := s.Snapshot(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.Transactions)
}
