package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledger/internal/model"
)

const quickColumns = "id, company_id, name, account_from_id, from_charge, account_to_id, to_charge"

// InsertQuick creates a quick transaction template.
func (q *Queries) InsertQuick(qt model.QuickTransaction) (int64, error) {
	res, err := q.q.Exec(
		"INSERT INTO quick_transactions (company_id, name, account_from_id, from_charge, account_to_id, to_charge) VALUES (?, ?, ?, ?, ?, ?)",
		qt.CompanyID, qt.Name, qt.AccountFromID, int(qt.FromCharge), qt.AccountToID, int(qt.ToCharge),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, model.UniqueConstraintViolation{Entity: "quick transaction", Key: qt.Name, CompanyID: qt.CompanyID}
		}
		return 0, fmt.Errorf("inserting quick transaction %q: %w", qt.Name, err)
	}
	return res.LastInsertId()
}

// GetQuick returns a company's quick transaction by ID.
func (q *Queries) GetQuick(companyID, id int64) (model.QuickTransaction, error) {
	row := q.q.QueryRow("SELECT "+quickColumns+" FROM quick_transactions WHERE id = ? AND company_id = ?", id, companyID)
	qt, err := scanQuick(row)
	if errors.Is(err, sql.ErrNoRows) {
		return qt, fmt.Errorf("quick transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return qt, fmt.Errorf("getting quick transaction %d: %w", id, err)
	}
	return qt, nil
}

// GetQuickByName returns the company's quick transaction named name.
func (q *Queries) GetQuickByName(companyID int64, name string) (model.QuickTransaction, error) {
	row := q.q.QueryRow("SELECT "+quickColumns+" FROM quick_transactions WHERE company_id = ? AND name = ?", companyID, name)
	qt, err := scanQuick(row)
	if errors.Is(err, sql.ErrNoRows) {
		return qt, fmt.Errorf("quick transaction %q: %w", name, model.ErrNotFound)
	}
	if err != nil {
		return qt, fmt.Errorf("getting quick transaction %q: %w", name, err)
	}
	return qt, nil
}

// ListQuick returns a company's quick transactions by name.
func (q *Queries) ListQuick(companyID int64) ([]model.QuickTransaction, error) {
	rows, err := q.q.Query("SELECT "+quickColumns+" FROM quick_transactions WHERE company_id = ? ORDER BY name, id", companyID)
	if err != nil {
		return nil, fmt.Errorf("listing quick transactions: %w", err)
	}
	defer rows.Close()

	var out []model.QuickTransaction
	for rows.Next() {
		qt, err := scanQuick(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quick transaction: %w", err)
		}
		out = append(out, qt)
	}
	return out, rows.Err()
}

// DeleteQuick removes a quick transaction.
func (q *Queries) DeleteQuick(companyID, id int64) error {
	res, err := q.q.Exec("DELETE FROM quick_transactions WHERE id = ? AND company_id = ?", id, companyID)
	if err != nil {
		return fmt.Errorf("deleting quick transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("quick transaction %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func scanQuick(r rowScanner) (model.QuickTransaction, error) {
	var (
		qt       model.QuickTransaction
		from, to int
	)
	err := r.Scan(&qt.ID, &qt.CompanyID, &qt.Name, &qt.AccountFromID, &from, &qt.AccountToID, &to)
	qt.FromCharge = model.ChargeKind(from)
	qt.ToCharge = model.ChargeKind(to)
	return qt, err
}

// InsertRecurring creates a recurring transaction header.
func (q *Queries) InsertRecurring(r model.RecurringTransaction) (int64, error) {
	res, err := q.q.Exec("INSERT INTO recurring_transactions (company_id, name, notes) VALUES (?, ?, ?)",
		r.CompanyID, r.Name, r.Notes)
	if err != nil {
		return 0, fmt.Errorf("inserting recurring transaction %q: %w", r.Name, err)
	}
	return res.LastInsertId()
}

// UpdateRecurring rewrites the recurring transaction header.
func (q *Queries) UpdateRecurring(r model.RecurringTransaction) error {
	_, err := q.q.Exec("UPDATE recurring_transactions SET name = ?, notes = ? WHERE id = ? AND company_id = ?",
		r.Name, r.Notes, r.ID, r.CompanyID)
	if err != nil {
		return fmt.Errorf("updating recurring transaction %d: %w", r.ID, err)
	}
	return nil
}

// GetRecurring returns a recurring transaction with its details.
func (q *Queries) GetRecurring(companyID, id int64) (model.RecurringTransaction, error) {
	var r model.RecurringTransaction
	err := q.q.QueryRow("SELECT id, company_id, name, notes FROM recurring_transactions WHERE id = ? AND company_id = ?", id, companyID).
		Scan(&r.ID, &r.CompanyID, &r.Name, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("recurring transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("getting recurring transaction %d: %w", id, err)
	}

	rows, err := q.q.Query("SELECT id, recurring_id, account_id, debit, credit, notes FROM recurring_details WHERE recurring_id = ? ORDER BY id", id)
	if err != nil {
		return r, fmt.Errorf("listing recurring details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d model.RecurringDetail
		if err := rows.Scan(&d.ID, &d.RecurringID, &d.AccountID, &d.Debit, &d.Credit, &d.Notes); err != nil {
			return r, fmt.Errorf("scanning recurring detail: %w", err)
		}
		r.Details = append(r.Details, d)
	}
	return r, rows.Err()
}

// ListRecurring returns recurring transaction headers ordered by name.
func (q *Queries) ListRecurring(companyID int64) ([]model.RecurringTransaction, error) {
	rows, err := q.q.Query("SELECT id, company_id, name, notes FROM recurring_transactions WHERE company_id = ? ORDER BY name, id", companyID)
	if err != nil {
		return nil, fmt.Errorf("listing recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []model.RecurringTransaction
	for rows.Next() {
		var r model.RecurringTransaction
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.Name, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning recurring transaction: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRecurring removes a recurring transaction and its details.
func (q *Queries) DeleteRecurring(companyID, id int64) error {
	if _, err := q.q.Exec(`DELETE FROM recurring_details WHERE recurring_id IN
		(SELECT id FROM recurring_transactions WHERE id = ? AND company_id = ?)`, id, companyID); err != nil {
		return fmt.Errorf("deleting recurring details: %w", err)
	}
	res, err := q.q.Exec("DELETE FROM recurring_transactions WHERE id = ? AND company_id = ?", id, companyID)
	if err != nil {
		return fmt.Errorf("deleting recurring transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring transaction %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// InsertRecurringDetail adds one line to a recurring transaction.
func (q *Queries) InsertRecurringDetail(d model.RecurringDetail) (int64, error) {
	res, err := q.q.Exec("INSERT INTO recurring_details (recurring_id, account_id, debit, credit, notes) VALUES (?, ?, ?, ?, ?)",
		d.RecurringID, d.AccountID, d.Debit, d.Credit, d.Notes)
	if err != nil {
		return 0, fmt.Errorf("inserting recurring detail: %w", err)
	}
	return res.LastInsertId()
}

// DeleteRecurringDetails removes every line of a recurring transaction.
func (q *Queries) DeleteRecurringDetails(recurringID int64) error {
	if _, err := q.q.Exec("DELETE FROM recurring_details WHERE recurring_id = ?", recurringID); err != nil {
		return fmt.Errorf("deleting recurring details: %w", err)
	}
	return nil
}
