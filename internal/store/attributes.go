package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledger/internal/model"
)

// InsertAttribute defines a new attribute for a company.
func (q *Queries) InsertAttribute(a model.Attribute) (int64, error) {
	res, err := q.q.Exec("INSERT INTO attributes (company_id, name, kind, metadata) VALUES (?, ?, ?, ?)",
		a.CompanyID, a.Name, int(a.Kind), a.Metadata)
	if err != nil {
		return 0, fmt.Errorf("inserting attribute %q: %w", a.Name, err)
	}
	return res.LastInsertId()
}

// GetAttribute returns a company's attribute by ID.
func (q *Queries) GetAttribute(companyID, id int64) (model.Attribute, error) {
	var (
		a    model.Attribute
		kind int
	)
	err := q.q.QueryRow("SELECT id, company_id, name, kind, metadata FROM attributes WHERE id = ? AND company_id = ?", id, companyID).
		Scan(&a.ID, &a.CompanyID, &a.Name, &kind, &a.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("attribute %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("getting attribute %d: %w", id, err)
	}
	a.Kind = model.AttributeKind(kind)
	return a, nil
}

// ListAttributes returns a company's attributes by name.
func (q *Queries) ListAttributes(companyID int64) ([]model.Attribute, error) {
	rows, err := q.q.Query("SELECT id, company_id, name, kind, metadata FROM attributes WHERE company_id = ? ORDER BY name, id", companyID)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	var out []model.Attribute
	for rows.Next() {
		var (
			a    model.Attribute
			kind int
		)
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &kind, &a.Metadata); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		a.Kind = model.AttributeKind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetAttributeValue stores the value of an attribute on a detail, replacing
// any previous value.
func (q *Queries) SetAttributeValue(v model.AttributeValue) error {
	var id int64
	err := q.q.QueryRow("SELECT id FROM attribute_values WHERE detail_id = ? AND attribute_id = ?", v.DetailID, v.AttributeID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := q.q.Exec("INSERT INTO attribute_values (detail_id, attribute_id, value) VALUES (?, ?, ?)",
			v.DetailID, v.AttributeID, v.Value); err != nil {
			return fmt.Errorf("inserting attribute value: %w", err)
		}
	case err != nil:
		return fmt.Errorf("looking up attribute value: %w", err)
	default:
		if _, err := q.q.Exec("UPDATE attribute_values SET value = ? WHERE id = ?", v.Value, id); err != nil {
			return fmt.Errorf("updating attribute value: %w", err)
		}
	}
	return nil
}

// ListAttributeValues returns the attribute values stored on a detail.
func (q *Queries) ListAttributeValues(detailID int64) ([]model.AttributeValue, error) {
	rows, err := q.q.Query("SELECT detail_id, attribute_id, value FROM attribute_values WHERE detail_id = ? ORDER BY attribute_id", detailID)
	if err != nil {
		return nil, fmt.Errorf("listing attribute values: %w", err)
	}
	defer rows.Close()

	var out []model.AttributeValue
	for rows.Next() {
		var v model.AttributeValue
		if err := rows.Scan(&v.DetailID, &v.AttributeID, &v.Value); err != nil {
			return nil, fmt.Errorf("scanning attribute value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
