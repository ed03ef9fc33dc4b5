// Package store defines persistence for categories and transactions.
// Backends live in subpackages.
package store

import (
	"context"
	"errors"

	"github.com/spendwise/spendwise/internal/model"
)

// ErrNotFound is returned when a category or transaction id does not exist
// for the requesting user.
var ErrNotFound = errors.New("not found")

// Snapshot is everything the spending engine needs for one user.
type Snapshot struct {
	UserID       string
	Categories   []model.Category
	Transactions []model.Transaction
}

// Store persists one or more users' categories and transactions.
// Ids are assigned by the store on Add. Deleting a category keeps its
// transactions.
type Store interface {
	Snapshot(ctx context.Context, userID string) (Snapshot, error)

	Categories(ctx context.Context, userID string) ([]model.Category, error)
	Category(ctx context.Context, userID string, id int) (model.Category, error)
	AddCategory(ctx context.Context, c model.Category) (model.Category, error)
	UpdateCategory(ctx context.Context, c model.Category) error
	DeleteCategory(ctx context.Context, userID string, id int) error

	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	TransactionsByCategory(ctx context.Context, userID string, categoryID int) ([]model.Transaction, error)
	Transaction(ctx context.Context, userID string, id int) (model.Transaction, error)
	AddTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, userID string, id int) error

	Close() error
}
