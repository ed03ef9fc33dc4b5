package spending

import (
	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/model"
)

// Bucket accumulates the spend for one category name.
type Bucket struct {
	Name       string
	CategoryID int
	Total      decimal.Decimal
	Limit      decimal.NullDecimal
	Count      int
}

// LimitConflict records a transaction whose category resolved to a different
// limit than the one already chosen for its bucket. The first limit wins.
type LimitConflict struct {
	Name          string
	TransactionID int
	Kept          decimal.NullDecimal
	Ignored       decimal.NullDecimal
}

// Aggregation is the output of Aggregate. Buckets are in order of first appearance.
type Aggregation struct {
	Buckets   []Bucket
	Rejected  []model.Transaction
	Conflicts []LimitConflict
}

// Aggregate groups transactions by resolved category name and sums their
// amounts. Categories without transactions are not reported. Transactions
// with a non-positive amount are rejected rather than summed.
func Aggregate(txns []model.Transaction, categories []model.Category) Aggregation {
	byID := make(map[int]model.Category, len(categories))
	for _, c := range categories {
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = c
		}
	}

	agg := Aggregation{Buckets: []Bucket{}}
	index := make(map[bucketKey]int)
	for _, t := range txns {
		if !t.Amount.IsPositive() {
			agg.Rejected = append(agg.Rejected, t)
			continue
		}

		cat, resolved := resolve(t, byID)
		key := bucketKey{name: cat.Name, synthetic: !resolved}
		i, seen := index[key]
		if !seen {
			i = len(agg.Buckets)
			index[key] = i
			agg.Buckets = append(agg.Buckets, Bucket{
				Name:       cat.Name,
				CategoryID: cat.ID,
				Total:      decimal.Zero,
				Limit:      cat.Limit,
			})
		}

		b := &agg.Buckets[i]
		if seen && !model.SameLimit(b.Limit, cat.Limit) {
			agg.Conflicts = append(agg.Conflicts, LimitConflict{
				Name:          b.Name,
				TransactionID: t.ID,
				Kept:          b.Limit,
				Ignored:       cat.Limit,
			})
		}
		b.Total = b.Total.Add(t.Amount)
		b.Count++
	}
	return agg
}

// bucketKey keeps the Uncategorized fallback apart from any stored category
// that happens to share its name.
type bucketKey struct {
	name      string
	synthetic bool
}

// resolve finds the category for a transaction: the snapshot entry for its
// category id, then its embedded category, then Uncategorized. Categories
// owned by another user never resolve. The bool is false for the fallback.
func resolve(t model.Transaction, byID map[int]model.Category) (model.Category, bool) {
	if c, ok := byID[t.CategoryID]; ok && sameOwner(t, c) {
		return c, true
	}
	if c := t.Category; c != nil && c.ID == t.CategoryID && c.Name != "" && sameOwner(t, *c) {
		return *c, true
	}
	return model.Uncategorized(), false
}

func sameOwner(t model.Transaction, c model.Category) bool {
	return t.UserID == "" || c.UserID == "" || t.UserID == c.UserID
}
