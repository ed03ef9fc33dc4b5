// Package integrity reports data problems in a stored snapshot that the
// spending engine would otherwise absorb silently.
package integrity

import (
	"fmt"
	"strings"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/store"
)

// Kind classifies a problem.
type Kind string

const (
	KindInvalidAmount   Kind = "invalid-amount"
	KindZeroDate        Kind = "zero-date"
	KindUnknownCategory Kind = "unknown-category"
	KindEmptyName       Kind = "empty-name"
	KindReservedName    Kind = "reserved-name"
	KindInvalidLimit    Kind = "invalid-limit"
	KindDuplicateID     Kind = "duplicate-id"
	KindForeignOwner    Kind = "foreign-owner"
)

// Problem describes one violation. Subject is e.g. "transaction 12".
type Problem struct {
	Kind        Kind
	Subject     string
	Description string
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s [%s]: %s", p.Kind, p.Subject, p.Description)
}

// Check validates every category and transaction in snap.
func Check(snap store.Snapshot) []Problem {
	var problems []Problem

	categories := make(map[int]model.Category, len(snap.Categories))
	for _, c := range snap.Categories {
		subject := fmt.Sprintf("category %d", c.ID)
		if _, dup := categories[c.ID]; dup {
			problems = append(problems, Problem{KindDuplicateID, subject, "category id used more than once"})
			continue
		}
		categories[c.ID] = c

		if strings.TrimSpace(c.Name) == "" {
			problems = append(problems, Problem{KindEmptyName, subject, "category has no name"})
		}
		if model.IsReservedName(c.Name) {
			problems = append(problems, Problem{KindReservedName, subject,
				fmt.Sprintf("%q is reserved for unresolved transactions; reported separately", c.Name)})
		}
		if c.Limit.Valid && !c.Limit.Decimal.IsPositive() {
			problems = append(problems, Problem{KindInvalidLimit, subject,
				fmt.Sprintf("limit %s is not positive", c.Limit.Decimal)})
		}
		if snap.UserID != "" && c.UserID != snap.UserID {
			problems = append(problems, Problem{KindForeignOwner, subject,
				fmt.Sprintf("owned by %q, not %q", c.UserID, snap.UserID)})
		}
	}

	seen := make(map[int]bool, len(snap.Transactions))
	for _, t := range snap.Transactions {
		subject := fmt.Sprintf("transaction %d", t.ID)
		if seen[t.ID] {
			problems = append(problems, Problem{KindDuplicateID, subject, "transaction id used more than once"})
		}
		seen[t.ID] = true

		if !t.Amount.IsPositive() {
			problems = append(problems, Problem{KindInvalidAmount, subject,
				fmt.Sprintf("amount %s is not positive; excluded from reports", t.Amount)})
		}
		if t.Date.IsZero() {
			problems = append(problems, Problem{KindZeroDate, subject, "transaction has no date"})
		}
		if _, ok := categories[t.CategoryID]; !ok {
			problems = append(problems, Problem{KindUnknownCategory, subject,
				fmt.Sprintf("category %d does not exist; reported as %s", t.CategoryID, model.UncategorizedName)})
		}
		if snap.UserID != "" && t.UserID != snap.UserID {
			problems = append(problems, Problem{KindForeignOwner, subject,
				fmt.Sprintf("owned by %q, not %q", t.UserID, snap.UserID)})
		}
	}

	return problems
}
