// Package sqlitestore keeps categories and transactions in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/store"

	_ "modernc.org/sqlite"
)

const dateLayout = time.RFC3339Nano

// Store is a store.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open creates the database file if needed, migrates it and returns a Store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Debugf("Opened SQLite store at %s", dbPath)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Snapshot loads categories and transactions concurrently.
func (s *Store) Snapshot(ctx context.Context, userID string) (store.Snapshot, error) {
	snap := store.Snapshot{UserID: userID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := s.Categories(gctx, userID)
		snap.Categories = cats
		return err
	})
	g.Go(func() error {
		txns, err := s.Transactions(gctx, userID)
		snap.Transactions = txns
		return err
	})
	if err := g.Wait(); err != nil {
		return store.Snapshot{}, fmt.Errorf("load snapshot for %s: %w", userID, err)
	}
	return snap, nil
}

const categoryColumns = "id, user_id, name, max_spend_limit"

// Categories returns the user's categories ordered by id.
func (s *Store) Categories(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	cats := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// Category returns one category or store.ErrNotFound.
func (s *Store) Category(ctx context.Context, userID string, id int) (model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? AND id = ?", userID, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	return c, err
}

// AddCategory validates and inserts c, returning it with its new id.
func (s *Store) AddCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if err := c.Validate(); err != nil {
		return model.Category{}, fmt.Errorf("invalid category: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, max_spend_limit) VALUES (?, ?, ?)",
		c.UserID, c.Name, limitValue(c.Limit))
	if err != nil {
		return model.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, fmt.Errorf("category id: %w", err)
	}
	c.ID = int(id)
	log.Debugf("Added category %d (%s) for user %s", c.ID, c.Name, c.UserID)
	return c, nil
}

// UpdateCategory replaces the name and limit of an existing category.
func (s *Store) UpdateCategory(ctx context.Context, c model.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, max_spend_limit = ? WHERE user_id = ? AND id = ?",
		c.Name, limitValue(c.Limit), c.UserID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return expectOne(res, "category", c.ID)
}

// DeleteCategory removes a category. Its transactions are kept.
func (s *Store) DeleteCategory(ctx context.Context, userID string, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectOne(res, "category", id)
}

const transactionColumns = "id, user_id, category_id, amount_spent, transaction_date, note"

// Transactions returns the user's transactions ordered by id.
func (s *Store) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY id", userID)
}

// TransactionsByCategory returns the user's transactions for one category id.
func (s *Store) TransactionsByCategory(ctx context.Context, userID string, categoryID int) ([]model.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND category_id = ? ORDER BY id",
		userID, categoryID)
}

// Transaction returns one transaction or store.ErrNotFound.
func (s *Store) Transaction(ctx context.Context, userID string, id int) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND id = ?", userID, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", id, store.ErrNotFound)
	}
	return t, err
}

// AddTransaction validates t, checks its category exists and inserts it.
func (s *Store) AddTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	if err := t.Validate(); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}
	if _, err := s.Category(ctx, t.UserID, t.CategoryID); err != nil {
		return model.Transaction{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (user_id, category_id, amount_spent, transaction_date, note) VALUES (?, ?, ?, ?, ?)",
		t.UserID, t.CategoryID, t.Amount.String(), t.Date.UTC().Format(dateLayout), t.Note)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = int(id)
	t.Category = nil
	log.Debugf("Added transaction %d (%s in category %d) for user %s", t.ID, t.Amount, t.CategoryID, t.UserID)
	return t, nil
}

// UpdateTransaction replaces an existing transaction with t.
func (s *Store) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	current, err := s.Transaction(ctx, t.UserID, t.ID)
	if err != nil {
		return err
	}
	if current.CategoryID != t.CategoryID {
		if _, err := s.Category(ctx, t.UserID, t.CategoryID); err != nil {
			return err
		}
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ?, amount_spent = ?, transaction_date = ?, note = ? WHERE user_id = ? AND id = ?",
		t.CategoryID, t.Amount.String(), t.Date.UTC().Format(dateLayout), t.Note, t.UserID, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectOne(res, "transaction", t.ID)
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, userID string, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOne(res, "transaction", id)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (model.Category, error) {
	var (
		c     model.Category
		limit sql.NullString
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &limit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, err
		}
		return model.Category{}, fmt.Errorf("scan category: %w", err)
	}
	if limit.Valid {
		d, err := decimal.NewFromString(limit.String)
		if err != nil {
			return model.Category{}, fmt.Errorf("category %d limit %q: %w", c.ID, limit.String, err)
		}
		c.Limit = model.NewLimit(d)
	}
	return c, nil
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		t            model.Transaction
		amount, date string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &amount, &date, &t.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d amount %q: %w", t.ID, amount, err)
	}
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d date %q: %w", t.ID, date, err)
	}
	return t, nil
}

func limitValue(limit decimal.NullDecimal) any {
	if !limit.Valid {
		return nil
	}
	return limit.Decimal.String()
}

func expectOne(res sql.Result, kind string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
	}
	return nil
}
