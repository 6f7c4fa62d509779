package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledger/internal/model"
)

// InsertTransaction creates the transaction header and returns its ID.
func (q *Queries) InsertTransaction(t model.Transaction) (int64, error) {
	res, err := q.q.Exec("INSERT INTO transactions (company_id, date, notes) VALUES (?, ?, ?)",
		t.CompanyID, t.Date.Format(dateFormat), t.Notes)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTransaction rewrites the transaction header.
func (q *Queries) UpdateTransaction(t model.Transaction) error {
	_, err := q.q.Exec("UPDATE transactions SET date = ?, notes = ? WHERE id = ? AND company_id = ?",
		t.Date.Format(dateFormat), t.Notes, t.ID, t.CompanyID)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", t.ID, err)
	}
	return nil
}

// GetTransaction returns a company's transaction with its details in
// insertion order.
func (q *Queries) GetTransaction(companyID, id int64) (model.Transaction, error) {
	var (
		t    model.Transaction
		date string
	)
	err := q.q.QueryRow("SELECT id, company_id, date, notes FROM transactions WHERE id = ? AND company_id = ?", id, companyID).
		Scan(&t.ID, &t.CompanyID, &date, &t.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("getting transaction %d: %w", id, err)
	}
	if t.Date, err = parseDate(date); err != nil {
		return t, fmt.Errorf("transaction %d date: %w", id, err)
	}

	t.Details, err = q.queryDetails(detailSelect+" WHERE d.transaction_id = ? ORDER BY d.id", id)
	if err != nil {
		return t, err
	}
	return t, nil
}

// ListTransactions returns a company's transactions by date, each with its
// details in insertion order.
func (q *Queries) ListTransactions(companyID int64) ([]model.Transaction, error) {
	rows, err := q.q.Query("SELECT id, company_id, date, notes FROM transactions WHERE company_id = ? ORDER BY date, id", companyID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t    model.Transaction
			date string
		)
		if err := rows.Scan(&t.ID, &t.CompanyID, &date, &t.Notes); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %d date: %w", t.ID, err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	details, err := q.ListCompanyDetails(companyID)
	if err != nil {
		return nil, err
	}
	byTxn := make(map[int64][]model.Detail, len(txns))
	for _, d := range details {
		byTxn[d.TransactionID] = append(byTxn[d.TransactionID], d)
	}
	for i := range txns {
		txns[i].Details = byTxn[txns[i].ID]
	}
	return txns, nil
}

// DeleteTransaction removes a transaction, its details and their attribute values.
func (q *Queries) DeleteTransaction(companyID, id int64) error {
	if _, err := q.q.Exec(`DELETE FROM attribute_values WHERE detail_id IN
		(SELECT d.id FROM details d JOIN transactions t ON t.id = d.transaction_id WHERE t.id = ? AND t.company_id = ?)`, id, companyID); err != nil {
		return fmt.Errorf("deleting attribute values: %w", err)
	}
	if _, err := q.q.Exec(`DELETE FROM details WHERE transaction_id IN
		(SELECT id FROM transactions WHERE id = ? AND company_id = ?)`, id, companyID); err != nil {
		return fmt.Errorf("deleting details: %w", err)
	}
	res, err := q.q.Exec("DELETE FROM transactions WHERE id = ? AND company_id = ?", id, companyID)
	if err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// InsertDetail adds one posting and returns its ID.
func (q *Queries) InsertDetail(d model.Detail) (int64, error) {
	res, err := q.q.Exec("INSERT INTO details (transaction_id, account_id, debit, credit, notes) VALUES (?, ?, ?, ?, ?)",
		d.TransactionID, d.AccountID, d.Debit, d.Credit, d.Notes)
	if err != nil {
		return 0, fmt.Errorf("inserting detail: %w", err)
	}
	return res.LastInsertId()
}

// UpdateDetail rewrites a posting in place.
func (q *Queries) UpdateDetail(d model.Detail) error {
	_, err := q.q.Exec("UPDATE details SET account_id = ?, debit = ?, credit = ?, notes = ? WHERE id = ? AND transaction_id = ?",
		d.AccountID, d.Debit, d.Credit, d.Notes, d.ID, d.TransactionID)
	if err != nil {
		return fmt.Errorf("updating detail %d: %w", d.ID, err)
	}
	return nil
}

// DeleteDetail removes a posting and its attribute values.
func (q *Queries) DeleteDetail(id int64) error {
	if _, err := q.q.Exec("DELETE FROM attribute_values WHERE detail_id = ?", id); err != nil {
		return fmt.Errorf("deleting attribute values of detail %d: %w", id, err)
	}
	if _, err := q.q.Exec("DELETE FROM details WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting detail %d: %w", id, err)
	}
	return nil
}

// GetDetail returns a single posting with its transaction date.
func (q *Queries) GetDetail(id int64) (model.Detail, error) {
	details, err := q.queryDetails(detailSelect+" WHERE d.id = ?", id)
	if err != nil {
		return model.Detail{}, err
	}
	if len(details) == 0 {
		return model.Detail{}, fmt.Errorf("detail %d: %w", id, model.ErrNotFound)
	}
	return details[0], nil
}

// ListCompanyDetails returns every posting of a company, ordered by
// transaction then insertion.
func (q *Queries) ListCompanyDetails(companyID int64) ([]model.Detail, error) {
	return q.queryDetails(detailSelect+" WHERE t.company_id = ? ORDER BY t.id, d.id", companyID)
}

const detailSelect = `SELECT d.id, d.transaction_id, d.account_id, d.debit, d.credit, d.notes, t.date
	FROM details d JOIN transactions t ON t.id = d.transaction_id`

func (q *Queries) queryDetails(query string, args ...any) ([]model.Detail, error) {
	rows, err := q.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying details: %w", err)
	}
	defer rows.Close()

	var details []model.Detail
	for rows.Next() {
		var (
			d    model.Detail
			date string
		)
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.AccountID, &d.Debit, &d.Credit, &d.Notes, &date); err != nil {
			return nil, fmt.Errorf("scanning detail: %w", err)
		}
		if d.TransactionDate, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("detail %d date: %w", d.ID, err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
