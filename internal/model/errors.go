package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned (wrapped) when a company-scoped lookup misses.
var ErrNotFound = errors.New("not found")

// ValidationError describes a field or shape problem. Index is the 0-based
// line the problem belongs to, or -1 when it is not about a line.
type ValidationError struct {
	Field   string
	Index   int
	Message string
}

// NewValidationError builds a ValidationError that is not tied to a line.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Index: -1, Message: message}
}

func (e ValidationError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("line #%d: %s: %s", e.Index+1, e.Field, e.Message)
	case e.Index >= 0:
		return fmt.Sprintf("line #%d: %s", e.Index+1, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// BalanceError reports a violated trial-balance equation with the totals
// that were computed.
type BalanceError struct {
	Asset     decimal.Decimal
	Liability decimal.Decimal
	Equity    decimal.Decimal
}

func (e BalanceError) Error() string {
	return fmt.Sprintf("lines do not balance: ASSETS(%s) - LIABILITIES(%s) != EQUITY(%s)",
		e.Asset.StringFixed(2), e.Liability.StringFixed(2), e.Equity.StringFixed(2))
}

// CrossCompanyError reports an account used outside its company.
type CrossCompanyError struct {
	Index            int
	AccountID        int64
	AccountCompanyID int64
	CompanyID        int64
}

func (e CrossCompanyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("account %d belongs to company %d, not %d", e.AccountID, e.AccountCompanyID, e.CompanyID)
	}
	return fmt.Sprintf("line #%d: account %d belongs to company %d, not %d", e.Index+1, e.AccountID, e.AccountCompanyID, e.CompanyID)
}

// DetailShapeError reports a line carrying both a debit and a credit.
type DetailShapeError struct {
	Index  int
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e DetailShapeError) Error() string {
	return fmt.Sprintf("line #%d: must be credit or debit, not both (debit %s, credit %s)",
		e.Index+1, e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

// InsufficientLinesError reports a transaction with fewer than two lines.
type InsufficientLinesError struct {
	Count int
}

func (e InsufficientLinesError) Error() string {
	return fmt.Sprintf("transaction needs at least 2 lines, got %d", e.Count)
}

// UniqueConstraintViolation reports a duplicate key.
type UniqueConstraintViolation struct {
	Entity    string
	Key       string
	CompanyID int64
}

func (e UniqueConstraintViolation) Error() string {
	if e.CompanyID == 0 {
		return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s %q already exists in company %d", e.Entity, e.Key, e.CompanyID)
}

// ProtectedDeleteError reports a delete blocked by rows that still reference the target.
type ProtectedDeleteError struct {
	Entity string
	ID     int64
	Reason string
}

func (e ProtectedDeleteError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: %s", e.Entity, e.ID, e.Reason)
}
