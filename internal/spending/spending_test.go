package spending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/window"
)

var t0 = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func txn(id, cat int, amount string, date time.Time) model.Transaction {
	return model.Transaction{ID: id, UserID: "u1", CategoryID: cat, Amount: dec(amount), Date: date}
}

var (
	food = model.Category{ID: 1, UserID: "u1", Name: "Food", Limit: model.NewLimit(dec("500"))}
	rent = model.Category{ID: 2, UserID: "u1", Name: "Rent", Limit: model.NewLimit(dec("1200"))}
	fun  = model.Category{ID: 3, UserID: "u1", Name: "Entertainment"}

	categories = []model.Category{food, rent, fun}
)

func TestSummarize_AllTimeScenario(t *testing.T) {
	report, err := Summarize(Input{
		Now:    t0,
		Window: window.AllTime,
		Transactions: []model.Transaction{
			txn(1, 1, "300", t0),
			txn(2, 1, "250", t0),
			txn(3, 2, "1200", t0),
		},
		Categories: categories[:2],
	})
	require.NoError(t, err)
	require.Len(t, report.Categories, 2)

	assert.Equal(t, "Food", report.Categories[0].Name)
	assert.Equal(t, "550.00", report.Categories[0].Total.StringFixed(2))
	assert.True(t, report.Categories[0].Limit.Decimal.Equal(dec("500")))
	assert.True(t, report.Categories[0].OverLimit)

	assert.Equal(t, "Rent", report.Categories[1].Name)
	assert.Equal(t, "1200.00", report.Categories[1].Total.StringFixed(2))
	assert.False(t, report.Categories[1].OverLimit, "spending exactly the limit is not over")

	assert.Empty(t, report.Rejected)
	assert.Empty(t, report.Conflicts)
}

func TestSummarize_WindowExcludesEverything(t *testing.T) {
	report, err := Summarize(Input{
		Now:    t0.Add(days(40)),
		Window: window.Lookup("1 Month"),
		Transactions: []model.Transaction{
			txn(1, 1, "300", t0),
			txn(2, 1, "250", t0),
			txn(3, 2, "1200", t0),
		},
		Categories: categories[:2],
	})
	require.NoError(t, err)
	assert.NotNil(t, report.Categories)
	assert.Empty(t, report.Categories)
}

func TestSummarize_UnknownCategory(t *testing.T) {
	report, err := Summarize(Input{
		Now:          t0,
		Window:       window.AllTime,
		Transactions: []model.Transaction{txn(1, 99, "50", t0)},
		Categories:   categories,
	})
	require.NoError(t, err)
	require.Len(t, report.Categories, 1)

	got := report.Categories[0]
	assert.Equal(t, model.UncategorizedName, got.Name)
	assert.Equal(t, 0, got.CategoryID)
	assert.Equal(t, "50.00", got.Total.StringFixed(2))
	assert.False(t, got.Limit.Valid)
	assert.False(t, got.OverLimit)
}

func TestSummarize_ZeroNow(t *testing.T) {
	_, err := Summarize(Input{Window: window.AllTime})
	assert.ErrorIs(t, err, ErrInvalidNow)
}

func TestSummarize_ZeroWindow(t *testing.T) {
	in := Input{
		Now:          t0.Add(days(1)),
		Transactions: []model.Transaction{txn(1, 1, "10", t0)},
		Categories:   categories,
	}
	_, err := Summarize(in)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	in.Window = window.Window{Label: "Broken", Days: -3}
	_, err = Summarize(in)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSummarize_Empty(t *testing.T) {
	report, err := Summarize(Input{Now: t0, Window: window.OneYear, Categories: categories})
	require.NoError(t, err)
	assert.NotNil(t, report.Categories)
	assert.Empty(t, report.Categories)
	assert.True(t, report.Total().IsZero())
}

func TestSummarize_Idempotent(t *testing.T) {
	in := Input{
		Now:    t0,
		Window: window.ThreeMonths,
		Transactions: []model.Transaction{
			txn(1, 3, "20", t0.Add(-days(5))),
			txn(2, 1, "40.10", t0.Add(-days(60))),
			txn(3, 99, "5", t0.Add(-days(1))),
			txn(4, 2, "900", t0.Add(-days(100))),
			txn(5, 1, "480", t0),
		},
		Categories: categories,
	}
	first, err := Summarize(in)
	require.NoError(t, err)
	second, err := Summarize(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFilter_WindowBoundaries(t *testing.T) {
	now := t0
	txns := []model.Transaction{
		txn(1, 1, "1", now.Add(-days(30))),                 // exactly on the boundary
		txn(2, 1, "1", now.Add(-days(30)-time.Nanosecond)), // just outside
		txn(3, 1, "1", now.Add(days(3))),                   // future
		txn(4, 1, "1", now),
	}

	got := Filter(now, window.OneMonth, txns)
	ids := make([]int, len(got))
	for i, tx := range got {
		ids[i] = tx.ID
	}
	assert.Equal(t, []int{1, 3, 4}, ids)

	all := Filter(now, window.AllTime, txns)
	assert.Equal(t, txns, all)
}

func TestFilter_KeepsOrderAndDuplicates(t *testing.T) {
	a := txn(7, 1, "10", t0)
	got := Filter(t0, window.OneMonth, []model.Transaction{a, a, txn(3, 2, "5", t0)})
	require.Len(t, got, 3)
	assert.Equal(t, 7, got[0].ID)
	assert.Equal(t, 7, got[1].ID)
	assert.Equal(t, 3, got[2].ID)
}

func TestWindowMonotonicity(t *testing.T) {
	now := t0
	var txns []model.Transaction
	for i, age := range []int{0, 10, 29, 31, 89, 95, 170, 200, 364, 400, 1000, 2000, 4000} {
		cat := 1 + i%3
		txns = append(txns, txn(i+1, cat, "12.34", now.Add(-days(age))))
	}

	windows := window.All()
	for i := 1; i < len(windows); i++ {
		shorter, longer := windows[i-1], windows[i]
		small := Filter(now, shorter, txns)
		large := Filter(now, longer, txns)

		largeIDs := make(map[int]bool)
		for _, tx := range large {
			largeIDs[tx.ID] = true
		}
		for _, tx := range small {
			assert.True(t, largeIDs[tx.ID], "%s keeps txn %d but %s does not", shorter, tx.ID, longer)
		}

		smallReport, err := Summarize(Input{Now: now, Window: shorter, Transactions: txns, Categories: categories})
		require.NoError(t, err)
		largeReport, err := Summarize(Input{Now: now, Window: longer, Transactions: txns, Categories: categories})
		require.NoError(t, err)

		largeTotals := make(map[string]decimal.Decimal)
		for _, c := range largeReport.Categories {
			largeTotals[c.Name] = c.Total
		}
		for _, c := range smallReport.Categories {
			assert.True(t, c.Total.LessThanOrEqual(largeTotals[c.Name]),
				"%s total for %s exceeds %s", shorter, c.Name, longer)
		}
	}
}

func TestConservation(t *testing.T) {
	txns := []model.Transaction{
		txn(1, 1, "10.10", t0),
		txn(2, 2, "20.20", t0.Add(-days(20))),
		txn(3, 99, "30.30", t0.Add(-days(25))),
		txn(4, 3, "40.40", t0.Add(-days(45))),
		txn(5, 1, "0.01", t0.Add(days(2))),
	}
	for _, w := range window.All() {
		report, err := Summarize(Input{Now: t0, Window: w, Transactions: txns, Categories: categories})
		require.NoError(t, err)

		want := decimal.Zero
		for _, tx := range Filter(t0, w, txns) {
			want = want.Add(tx.Amount)
		}
		assert.True(t, want.Equal(report.Total()), "%s: want %s, got %s", w, want, report.Total())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		total string
		limit decimal.NullDecimal
		want  bool
	}{
		{"499.99", model.NewLimit(dec("500")), false},
		{"500", model.NewLimit(dec("500")), false},
		{"500.00", model.NewLimit(dec("500")), false},
		{"500.01", model.NewLimit(dec("500")), true},
		{"1000000", model.NoLimit(), false},
		{"0", model.NoLimit(), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(dec(tt.total), tt.limit), "Classify(%s, %v)", tt.total, tt.limit)
	}
}

func TestAggregate_FirstAppearanceOrder(t *testing.T) {
	agg := Aggregate([]model.Transaction{
		txn(1, 3, "5", t0),
		txn(2, 1, "5", t0),
		txn(3, 99, "5", t0),
		txn(4, 3, "5", t0),
		txn(5, 2, "5", t0),
	}, categories)

	names := make([]string, len(agg.Buckets))
	for i, b := range agg.Buckets {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"Entertainment", "Food", model.UncategorizedName, "Rent"}, names)
	assert.Equal(t, 2, agg.Buckets[0].Count)
}

func TestAggregate_RejectsNonPositiveAmounts(t *testing.T) {
	bad := txn(2, 1, "-40", t0)
	zero := txn(3, 1, "0", t0)
	agg := Aggregate([]model.Transaction{txn(1, 1, "100", t0), bad, zero}, categories)

	require.Len(t, agg.Buckets, 1)
	assert.Equal(t, "100.00", agg.Buckets[0].Total.StringFixed(2))
	assert.Equal(t, []model.Transaction{bad, zero}, agg.Rejected)
}

func TestAggregate_OnlyRejectedIsEmpty(t *testing.T) {
	agg := Aggregate([]model.Transaction{txn(1, 1, "-1", t0)}, categories)
	assert.Empty(t, agg.Buckets)
	assert.Len(t, agg.Rejected, 1)
}

func TestAggregate_EmbeddedCategory(t *testing.T) {
	embedded := model.Category{ID: 42, UserID: "u1", Name: "Travel", Limit: model.NewLimit(dec("100"))}
	tx := txn(1, 42, "150", t0)
	tx.Category = &embedded

	report, err := Summarize(Input{Now: t0, Window: window.AllTime, Transactions: []model.Transaction{tx}})
	require.NoError(t, err)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, "Travel", report.Categories[0].Name)
	assert.Equal(t, 42, report.Categories[0].CategoryID)
	assert.True(t, report.Categories[0].OverLimit)
}

func TestAggregate_SnapshotWinsOverEmbedded(t *testing.T) {
	stale := model.Category{ID: 1, UserID: "u1", Name: "Groceries", Limit: model.NewLimit(dec("10"))}
	tx := txn(1, 1, "50", t0)
	tx.Category = &stale

	agg := Aggregate([]model.Transaction{tx}, categories)
	require.Len(t, agg.Buckets, 1)
	assert.Equal(t, "Food", agg.Buckets[0].Name)
}

func TestAggregate_OtherUsersCategoryDoesNotResolve(t *testing.T) {
	theirs := model.Category{ID: 5, UserID: "u2", Name: "Gifts"}
	agg := Aggregate([]model.Transaction{txn(1, 5, "25", t0)}, []model.Category{theirs})
	require.Len(t, agg.Buckets, 1)
	assert.Equal(t, model.UncategorizedName, agg.Buckets[0].Name)
}

func TestAggregate_LimitConflictKeepsFirst(t *testing.T) {
	a := txn(1, 7, "80", t0)
	a.Category = &model.Category{ID: 7, Name: "Books", Limit: model.NewLimit(dec("100"))}
	b := txn(2, 7, "30", t0)
	b.Category = &model.Category{ID: 7, Name: "Books", Limit: model.NewLimit(dec("200"))}

	report, err := Summarize(Input{Now: t0, Window: window.AllTime, Transactions: []model.Transaction{a, b}})
	require.NoError(t, err)
	require.Len(t, report.Categories, 1)
	assert.True(t, report.Categories[0].Limit.Decimal.Equal(dec("100")))
	assert.True(t, report.Categories[0].OverLimit)

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "Books", report.Conflicts[0].Name)
	assert.Equal(t, 2, report.Conflicts[0].TransactionID)
	assert.True(t, report.Conflicts[0].Ignored.Decimal.Equal(dec("200")))
}

func TestAggregate_SameNameSharesBucket(t *testing.T) {
	dupe := model.Category{ID: 8, UserID: "u1", Name: "Food", Limit: model.NewLimit(dec("500"))}
	agg := Aggregate([]model.Transaction{txn(1, 1, "10", t0), txn(2, 8, "15", t0)}, append(categories, dupe))
	require.Len(t, agg.Buckets, 1)
	assert.Equal(t, "25.00", agg.Buckets[0].Total.StringFixed(2))
	assert.Equal(t, 1, agg.Buckets[0].CategoryID)
	assert.Empty(t, agg.Conflicts)
}

func TestAggregate_StoredUncategorizedKeptApartFromFallback(t *testing.T) {
	stored := model.Category{ID: 1, UserID: "u1", Name: model.UncategorizedName, Limit: model.NewLimit(dec("10"))}

	report, err := Summarize(Input{
		Now:    t0,
		Window: window.AllTime,
		Transactions: []model.Transaction{
			txn(1, 1, "5", t0),
			txn(2, 99, "50", t0),
		},
		Categories: []model.Category{stored},
	})
	require.NoError(t, err)
	require.Len(t, report.Categories, 2)
	assert.Empty(t, report.Conflicts)

	fallback := report.Categories[1]
	assert.Equal(t, model.UncategorizedName, fallback.Name)
	assert.Equal(t, 0, fallback.CategoryID)
	assert.Equal(t, "50", fallback.Total.String())
	assert.False(t, fallback.Limit.Valid)
	assert.False(t, fallback.OverLimit)

	assert.Equal(t, 1, report.Categories[0].CategoryID)
	assert.False(t, report.Categories[0].OverLimit)
}

func TestReport_Series(t *testing.T) {
	report, err := Summarize(Input{
		Now:    t0,
		Window: window.AllTime,
		Transactions: []model.Transaction{
			txn(1, 1, "600", t0),
			txn(2, 3, "70", t0),
		},
		Categories: categories,
	})
	require.NoError(t, err)

	s := report.Series()
	assert.Equal(t, []string{"Food", "Entertainment"}, s.Names)
	require.Len(t, s.Totals, 2)
	assert.Equal(t, "600.00", s.Totals[0].StringFixed(2))
	assert.Equal(t, "70.00", s.Totals[1].StringFixed(2))
	assert.Equal(t, []bool{true, false}, s.OverLimit)

	over := report.OverLimit()
	require.Len(t, over, 1)
	assert.Equal(t, "Food", over[0].Name)
}
