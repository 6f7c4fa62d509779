package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledger/internal/model"
)

const dateFormat = "2006-01-02"

// InsertCompany creates a company and returns its ID.
func (q *Queries) InsertCompany(name string) (int64, error) {
	res, err := q.q.Exec("INSERT INTO companies (name) VALUES (?)", name)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, model.UniqueConstraintViolation{Entity: "company", Key: name}
		}
		return 0, fmt.Errorf("inserting company: %w", err)
	}
	return res.LastInsertId()
}

// GetCompany returns a company by ID.
func (q *Queries) GetCompany(id int64) (model.Company, error) {
	var c model.Company
	err := q.q.QueryRow("SELECT id, name FROM companies WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("company %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("getting company %d: %w", id, err)
	}
	return c, nil
}

// GetCompanyByName returns a company by its unique name.
func (q *Queries) GetCompanyByName(name string) (model.Company, error) {
	var c model.Company
	err := q.q.QueryRow("SELECT id, name FROM companies WHERE name = ?", name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("company %q: %w", name, model.ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("getting company %q: %w", name, err)
	}
	return c, nil
}

// ListCompanies returns all companies ordered by name.
func (q *Queries) ListCompanies() ([]model.Company, error) {
	rows, err := q.q.Query("SELECT id, name FROM companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// DeleteCompany removes a company and every row it owns. Rows are removed
// child-first so RESTRICT references are gone before their targets.
func (q *Queries) DeleteCompany(id int64) error {
	stmts := []string{
		`DELETE FROM attribute_values WHERE attribute_id IN (SELECT id FROM attributes WHERE company_id = ?)`,
		`DELETE FROM details WHERE transaction_id IN (SELECT id FROM transactions WHERE company_id = ?)`,
		`DELETE FROM transactions WHERE company_id = ?`,
		`DELETE FROM recurring_details WHERE recurring_id IN (SELECT id FROM recurring_transactions WHERE company_id = ?)`,
		`DELETE FROM recurring_transactions WHERE company_id = ?`,
		`DELETE FROM quick_transactions WHERE company_id = ?`,
		`DELETE FROM attributes WHERE company_id = ?`,
		`UPDATE accounts SET parent_id = NULL WHERE company_id = ?`,
		`DELETE FROM accounts WHERE company_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := q.q.Exec(stmt, id); err != nil {
			return fmt.Errorf("deleting company %d: %w", id, err)
		}
	}
	res, err := q.q.Exec("DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting company %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("company %d: %w", id, model.ErrNotFound)
	}
	return nil
}
