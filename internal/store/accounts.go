package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/ledger/internal/model"
)

const accountColumns = "id, company_id, parent_id, account_key, description, kind, is_leaf, opening_date, opening_balance"

// InsertAccount creates an account and returns its ID.
func (q *Queries) InsertAccount(a model.Account) (int64, error) {
	res, err := q.q.Exec(
		`INSERT INTO accounts (company_id, parent_id, account_key, description, kind, is_leaf, opening_date, opening_balance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.CompanyID, nullID(a.ParentID), a.Key, a.Description, int(a.Kind), a.IsLeaf,
		a.OpeningDate.Format(dateFormat), a.OpeningBalance,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, model.UniqueConstraintViolation{Entity: "account", Key: a.Key, CompanyID: a.CompanyID}
		}
		return 0, fmt.Errorf("inserting account %q: %w", a.Key, err)
	}
	return res.LastInsertId()
}

// UpdateAccount writes the mutable account fields.
func (q *Queries) UpdateAccount(a model.Account) error {
	_, err := q.q.Exec(
		"UPDATE accounts SET description = ?, opening_date = ?, opening_balance = ? WHERE id = ? AND company_id = ?",
		a.Description, a.OpeningDate.Format(dateFormat), a.OpeningBalance, a.ID, a.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("updating account %d: %w", a.ID, err)
	}
	return nil
}

// GetAccount returns an account by ID regardless of company. Callers
// compare CompanyID themselves so cross-company use can be reported.
func (q *Queries) GetAccount(id int64) (model.Account, error) {
	row := q.q.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("account %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("getting account %d: %w", id, err)
	}
	return a, nil
}

// GetAccountByKey returns the account with key in company.
func (q *Queries) GetAccountByKey(companyID int64, key string) (model.Account, error) {
	row := q.q.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE company_id = ? AND account_key = ?", companyID, key)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("account %q: %w", key, model.ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("getting account %q: %w", key, err)
	}
	return a, nil
}

// AccountKeyExists reports whether key is taken in company.
func (q *Queries) AccountKeyExists(companyID int64, key string) (bool, error) {
	var count int
	err := q.q.QueryRow("SELECT COUNT(*) FROM accounts WHERE company_id = ? AND account_key = ?", companyID, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking account key %q: %w", key, err)
	}
	return count > 0, nil
}

// ListAccounts returns every account of a company ordered by key.
func (q *Queries) ListAccounts(companyID int64) ([]model.Account, error) {
	rows, err := q.q.Query("SELECT "+accountColumns+" FROM accounts WHERE company_id = ? ORDER BY account_key", companyID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CountAccountReferences returns how many details and recurring details
// point at any of ids.
func (q *Queries) CountAccountReferences(ids []int64) (details, recurring int, err error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}
	in, args := inClause(ids)
	if err := q.q.QueryRow("SELECT COUNT(*) FROM details WHERE account_id IN "+in, args...).Scan(&details); err != nil {
		return 0, 0, fmt.Errorf("counting details: %w", err)
	}
	if err := q.q.QueryRow("SELECT COUNT(*) FROM recurring_details WHERE account_id IN "+in, args...).Scan(&recurring); err != nil {
		return 0, 0, fmt.Errorf("counting recurring details: %w", err)
	}
	return details, recurring, nil
}

// DeleteAccounts removes the given accounts and the quick transactions that
// reference them. ids must be ordered children before parents.
func (q *Queries) DeleteAccounts(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	in, args := inClause(ids)
	if _, err := q.q.Exec("DELETE FROM quick_transactions WHERE account_from_id IN "+in+" OR account_to_id IN "+in, append(args, args...)...); err != nil {
		return fmt.Errorf("deleting quick transactions: %w", err)
	}
	for _, id := range ids {
		if _, err := q.q.Exec("DELETE FROM accounts WHERE id = ?", id); err != nil {
			if IsForeignKeyViolation(err) {
				return model.ProtectedDeleteError{Entity: "account", ID: id, Reason: "still referenced"}
			}
			return fmt.Errorf("deleting account %d: %w", id, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (model.Account, error) {
	var (
		a           model.Account
		parentID    sql.NullInt64
		kind        int
		openingDate string
	)
	if err := r.Scan(&a.ID, &a.CompanyID, &parentID, &a.Key, &a.Description, &kind, &a.IsLeaf, &openingDate, &a.OpeningBalance); err != nil {
		return a, err
	}
	a.ParentID = parentID.Int64
	a.Kind = model.AccountKind(kind)
	date, err := parseDate(openingDate)
	if err != nil {
		return a, fmt.Errorf("account %d opening_date: %w", a.ID, err)
	}
	a.OpeningDate = date
	return a, nil
}

func parseDate(s string) (time.Time, error) {
	// MySQL DATETIME-ish values carry a time suffix; keep the date part.
	if len(s) > len(dateFormat) {
		s = s[:len(dateFormat)]
	}
	return time.Parse(dateFormat, s)
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")", args
}
