// Package csvstore keeps categories and transactions as CSV files in a data
// directory.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/store"
)

const (
	// CategoriesFile is the categories file name inside the data directory.
	CategoriesFile = "categories.csv"
	// TransactionsFile is the transactions file name inside the data directory.
	TransactionsFile = "transactions.csv"
	// IDsFile records the highest id issued per file.
	IDsFile = "ids.yaml"
)

// Store is a store.Store backed by two CSV files. Every call rereads the files.
type Store struct {
	dir string
	mu  sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New returns a Store rooted at dir. Missing files read as empty.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Close is a no-op; files are opened per call.
func (s *Store) Close() error {
	return nil
}

// Snapshot returns a user's categories and transactions.
func (s *Store) Snapshot(_ context.Context, userID string) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.readCategories()
	if err != nil {
		return store.Snapshot{}, err
	}
	txns, err := s.readTransactions()
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{
		UserID:       userID,
		Categories:   ownedCategories(cats, userID),
		Transactions: ownedTransactions(txns, userID, 0),
	}, nil
}

// Categories returns the user's categories in file order.
func (s *Store) Categories(_ context.Context, userID string) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.readCategories()
	if err != nil {
		return nil, err
	}
	return ownedCategories(cats, userID), nil
}

// Category returns one category or store.ErrNotFound.
func (s *Store) Category(_ context.Context, userID string, id int) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.readCategories()
	if err != nil {
		return model.Category{}, err
	}
	i := findCategory(cats, userID, id)
	if i < 0 {
		return model.Category{}, fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	return cats[i], nil
}

// AddCategory validates c, assigns the next id and rewrites categories.csv.
func (s *Store) AddCategory(_ context.Context, c model.Category) (model.Category, error) {
	if err := c.Validate(); err != nil {
		return model.Category{}, fmt.Errorf("invalid category: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.readCategories()
	if err != nil {
		return model.Category{}, err
	}
	marks, err := s.readIDMarks()
	if err != nil {
		return model.Category{}, err
	}
	ids := make([]int, len(cats))
	for i, existing := range cats {
		ids[i] = existing.ID
	}
	c.ID = store.NextID(ids, marks.Categories)

	if err := s.writeCategories(append(cats, c)); err != nil {
		return model.Category{}, err
	}
	marks.Categories = c.ID
	if err := s.writeIDMarks(marks); err != nil {
		return model.Category{}, err
	}
	log.Debugf("Added category %d (%s) for user %s", c.ID, c.Name, c.UserID)
	return c, nil
}

// UpdateCategory replaces an existing category with c.
func (s *Store) UpdateCategory(_ context.Context, c model.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.readCategories()
	if err != nil {
		return err
	}
	i := findCategory(cats, c.UserID, c.ID)
	if i < 0 {
		return fmt.Errorf("category %d: %w", c.ID, store.ErrNotFound)
	}
	cats[i] = c
	return s.writeCategories(cats)
}

// DeleteCategory removes a category. Its transactions are kept.
func (s *Store) DeleteCategory(_ context.Context, userID string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.readCategories()
	if err != nil {
		return err
	}
	i := findCategory(cats, userID, id)
	if i < 0 {
		return fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	return s.writeCategories(append(cats[:i], cats[i+1:]...))
}

// Transactions returns the user's transactions in file order.
func (s *Store) Transactions(_ context.Context, userID string) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	return ownedTransactions(txns, userID, 0), nil
}

// TransactionsByCategory returns the user's transactions for one category id.
func (s *Store) TransactionsByCategory(_ context.Context, userID string, categoryID int) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	return ownedTransactions(txns, userID, categoryID), nil
}

// Transaction returns one transaction or store.ErrNotFound.
func (s *Store) Transaction(_ context.Context, userID string, id int) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.readTransactions()
	if err != nil {
		return model.Transaction{}, err
	}
	i := findTransaction(txns, userID, id)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", id, store.ErrNotFound)
	}
	return txns[i], nil
}

// AddTransaction validates t, checks its category exists, assigns the next id
// and appends it to transactions.csv.
func (s *Store) AddTransaction(_ context.Context, t model.Transaction) (model.Transaction, error) {
	if err := t.Validate(); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategory(t.UserID, t.CategoryID); err != nil {
		return model.Transaction{}, err
	}

	txns, err := s.readTransactions()
	if err != nil {
		return model.Transaction{}, err
	}
	marks, err := s.readIDMarks()
	if err != nil {
		return model.Transaction{}, err
	}
	ids := make([]int, len(txns))
	for i, existing := range txns {
		ids[i] = existing.ID
	}
	t.ID = store.NextID(ids, marks.Transactions)
	t.Category = nil

	path := filepath.Join(s.dir, TransactionsFile)
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.Transaction{}, fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, TransactionHeader); err != nil {
			return model.Transaction{}, fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, []model.Transaction{t}); err != nil {
		return model.Transaction{}, fmt.Errorf("appending transaction: %w", err)
	}
	marks.Transactions = t.ID
	if err := s.writeIDMarks(marks); err != nil {
		return model.Transaction{}, err
	}
	log.Debugf("Added transaction %d (%s in category %d) for user %s", t.ID, t.Amount, t.CategoryID, t.UserID)
	return t, nil
}

// UpdateTransaction replaces an existing transaction with t.
func (s *Store) UpdateTransaction(_ context.Context, t model.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.readTransactions()
	if err != nil {
		return err
	}
	i := findTransaction(txns, t.UserID, t.ID)
	if i < 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, store.ErrNotFound)
	}
	if t.CategoryID != txns[i].CategoryID {
		if err := s.checkCategory(t.UserID, t.CategoryID); err != nil {
			return err
		}
	}
	t.Category = nil
	txns[i] = t
	return s.writeTransactions(txns)
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(_ context.Context, userID string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.readTransactions()
	if err != nil {
		return err
	}
	i := findTransaction(txns, userID, id)
	if i < 0 {
		return fmt.Errorf("transaction %d: %w", id, store.ErrNotFound)
	}
	return s.writeTransactions(append(txns[:i], txns[i+1:]...))
}

func (s *Store) checkCategory(userID string, id int) error {
	cats, err := s.readCategories()
	if err != nil {
		return err
	}
	if findCategory(cats, userID, id) < 0 {
		return fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) readCategories() ([]model.Category, error) {
	path := filepath.Join(s.dir, CategoriesFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening categories %s: %w", path, err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories %s: %w", path, err)
	}
	return cats, nil
}

func (s *Store) writeCategories(cats []model.Category) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, CategoriesFile))
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, cats); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}

func (s *Store) readTransactions() ([]model.Transaction, error) {
	path := filepath.Join(s.dir, TransactionsFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions %s: %w", path, err)
	}
	return txns, nil
}

func (s *Store) writeTransactions(txns []model.Transaction) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, TransactionsFile))
	if err != nil {
		return fmt.Errorf("creating transactions file: %w", err)
	}
	defer f.Close()

	if err := WriteTransactions(f, txns); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	return nil
}

func findCategory(cats []model.Category, userID string, id int) int {
	for i, c := range cats {
		if c.ID == id && c.UserID == userID {
			return i
		}
	}
	return -1
}

func findTransaction(txns []model.Transaction, userID string, id int) int {
	for i, t := range txns {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}

func ownedCategories(cats []model.Category, userID string) []model.Category {
	out := []model.Category{}
	for _, c := range cats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// ownedTransactions filters by user and, when categoryID is non-zero, by category.
func ownedTransactions(txns []model.Transaction, userID string, categoryID int) []model.Transaction {
	out := []model.Transaction{}
	for _, t := range txns {
		if t.UserID != userID {
			continue
		}
		if categoryID != 0 && t.CategoryID != categoryID {
			continue
		}
		out = append(out, t)
	}
	return out
}
