package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company is the tenant boundary. Everything else hangs off one.
type Company struct {
	ID   int64
	Name string
}

// Transaction is a dated, balanced event made of two or more details.
type Transaction struct {
	ID        int64
	CompanyID int64
	Date      time.Time
	Notes     string
	Details   []Detail // insertion order
}

// Detail is one posting: a debit or a credit against a leaf account.
type Detail struct {
	ID              int64
	TransactionID   int64
	AccountID       int64
	Debit           decimal.Decimal // zero if credit side
	Credit          decimal.Decimal // zero if debit side
	Notes           string
	TransactionDate time.Time // denormalized from the owning transaction on read
}

// Line is a caller-supplied posting. DetailID is set only when editing an
// existing detail in place.
type Line struct {
	DetailID  int64
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Notes     string
}

// Lines converts the details of a transaction back into editable lines.
func (t Transaction) Lines() []Line {
	lines := make([]Line, len(t.Details))
	for i, d := range t.Details {
		lines[i] = Line{
			DetailID:  d.ID,
			AccountID: d.AccountID,
			Debit:     d.Debit,
			Credit:    d.Credit,
			Notes:     d.Notes,
		}
	}
	return lines
}
