package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/model"
)

// CategoryHeader is the CSV header for categories.csv.
const CategoryHeader = "category_id,user_id,category_name,max_spend_limit"

// TransactionHeader is the CSV header for transactions.csv.
const TransactionHeader = "transaction_id,user_id,category_id,amount_spent,transaction_date,note"

const (
	catNumFields = 4
	catColID     = 0
	catColUser   = 1
	catColName   = 2
	catColLimit  = 3

	txnNumFields = 6
	txnColID     = 0
	txnColUser   = 1
	txnColCat    = 2
	txnColAmount = 3
	txnColDate   = 4
	txnColNote   = 5

	dateOnlyFormat = "2006-01-02"
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	records, err := readRecords(r, catNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	var cats []model.Category
	for i, rec := range records {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCategories writes categories.csv including the header.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CategoryHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row. An unbounded limit is empty.
func MarshalCategory(c model.Category) []string {
	row := make([]string, catNumFields)
	row[catColID] = strconv.Itoa(c.ID)
	row[catColUser] = c.UserID
	row[catColName] = c.Name
	if c.Limit.Valid {
		row[catColLimit] = c.Limit.Decimal.String()
	}
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != catNumFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", catNumFields, len(record))
	}

	id, err := strconv.Atoi(record[catColID])
	if err != nil {
		return model.Category{}, fmt.Errorf("parsing category_id %q: %w", record[catColID], err)
	}

	var limit decimal.NullDecimal
	if record[catColLimit] != "" {
		d, err := decimal.NewFromString(record[catColLimit])
		if err != nil {
			return model.Category{}, fmt.Errorf("parsing max_spend_limit %q: %w", record[catColLimit], err)
		}
		limit = model.NewLimit(d)
	}

	return model.Category{
		ID:     id,
		UserID: record[catColUser],
		Name:   record[catColName],
		Limit:  limit,
	}, nil
}

// ReadTransactions reads transactions.csv.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	records, err := readRecords(r, txnNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	var txns []model.Transaction
	for i, rec := range records {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes transactions.csv including the header.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransactionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendTransactions appends rows to an existing transactions.csv (no header).
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row. Dates are written
// as RFC 3339 in UTC.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txnNumFields)
	row[txnColID] = strconv.Itoa(t.ID)
	row[txnColUser] = t.UserID
	row[txnColCat] = strconv.Itoa(t.CategoryID)
	row[txnColAmount] = t.Amount.String()
	row[txnColDate] = t.Date.UTC().Format(time.RFC3339)
	row[txnColNote] = t.Note
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. The date may be
// RFC 3339 or a bare YYYY-MM-DD.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txnNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnNumFields, len(record))
	}

	id, err := strconv.Atoi(record[txnColID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction_id %q: %w", record[txnColID], err)
	}

	categoryID, err := strconv.Atoi(record[txnColCat])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing category_id %q: %w", record[txnColCat], err)
	}

	amount, err := decimal.NewFromString(record[txnColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount_spent %q: %w", record[txnColAmount], err)
	}

	date, err := ParseDate(record[txnColDate])
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		ID:         id,
		UserID:     record[txnColUser],
		CategoryID: categoryID,
		Amount:     amount,
		Date:       date,
		Note:       record[txnColNote],
	}, nil
}

// ParseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates (midnight UTC).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// readRecords returns all rows after the header.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}
