package csvstore

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendwise/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestCategoriesRoundTrip(t *testing.T) {
	cats := []model.Category{
		{ID: 1, UserID: "u1", Name: "Food", Limit: model.NewLimit(dec("500"))},
		{ID: 2, UserID: "u1", Name: "Fun, games & \"stuff\""},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, cats))

	got, err := ReadCategories(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, cats[0].ID, got[0].ID)
	assert.Equal(t, cats[0].UserID, got[0].UserID)
	assert.True(t, got[0].Limit.Valid)
	assert.True(t, cats[0].Limit.Decimal.Equal(got[0].Limit.Decimal))

	assert.Equal(t, cats[1].Name, got[1].Name)
	assert.False(t, got[1].Limit.Valid)
}

func TestTransactionsRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{ID: 1, UserID: "u1", CategoryID: 2, Amount: dec("12.34"), Date: time.Date(2025, 1, 3, 14, 5, 0, 0, time.UTC), Note: "coffee"},
		{ID: 2, UserID: "u1", CategoryID: 99, Amount: dec("0.01"), Date: date(2024, 12, 31)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range txns {
		assert.Equal(t, txns[i].ID, got[i].ID)
		assert.Equal(t, txns[i].CategoryID, got[i].CategoryID)
		assert.True(t, txns[i].Amount.Equal(got[i].Amount))
		assert.True(t, txns[i].Date.Equal(got[i].Date))
		assert.Equal(t, txns[i].Note, got[i].Note)
	}
}

func TestMarshalCategory_Unbounded(t *testing.T) {
	row := MarshalCategory(model.Category{ID: 3, UserID: "u1", Name: "Misc"})
	assert.Equal(t, []string{"3", "u1", "Misc", ""}, row)
}

func TestUnmarshalTransaction_DateOnly(t *testing.T) {
	got, err := UnmarshalTransaction([]string{"7", "u1", "1", "9.99", "2025-02-01", ""})
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(date(2025, 2, 1)))
}

func TestUnmarshalTransaction_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"short row", []string{"1", "u1"}, "expected 6 fields"},
		{"bad id", []string{"x", "u1", "1", "1", "2025-01-01", ""}, "parsing transaction_id"},
		{"bad category", []string{"1", "u1", "x", "1", "2025-01-01", ""}, "parsing category_id"},
		{"bad amount", []string{"1", "u1", "1", "ten", "2025-01-01", ""}, "parsing amount_spent"},
		{"bad date", []string{"1", "u1", "1", "1", "01/02/2025", ""}, "parsing date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTransaction(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshalCategory_BadLimit(t *testing.T) {
	_, err := UnmarshalCategory([]string{"1", "u1", "Food", "lots"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing max_spend_limit")
}

func TestReadEmpty(t *testing.T) {
	cats, err := ReadCategories(strings.NewReader(CategoryHeader + "\n"))
	require.NoError(t, err)
	assert.Nil(t, cats)

	txns, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestReadTransactions_WrongFieldCount(t *testing.T) {
	_, err := ReadTransactions(strings.NewReader(TransactionHeader + "\n1,u1,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading transactions CSV")
}
