// Package templates holds reusable transaction patterns: two-account quick
// transactions and multi-line recurring transactions.
package templates

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service manages quick and recurring transactions of a company.
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates a templates Service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

var unit = decimal.NewFromInt(1)

func unitLeg(a model.Account, charge model.ChargeKind) journal.Leg {
	if charge == model.ChargeDebit {
		return journal.Leg{Account: a, Debit: unit, Credit: decimal.Zero}
	}
	return journal.Leg{Account: a, Debit: decimal.Zero, Credit: unit}
}

// ValidateQuick checks a template against its resolved accounts: both
// accounts are leaves of the template's company and charging them by one
// unit each keeps the books balanced. Since both sides scale with the
// amount, every later expansion balances too.
func ValidateQuick(q model.QuickTransaction, from, to model.Account) error {
	if strings.TrimSpace(q.Name) == "" {
		return model.NewValidationError("name", "must not be empty")
	}
	if n := utf8.RuneCountInString(q.Name); n > model.MaxNameLength {
		return model.NewValidationError("name", fmt.Sprintf("is %d characters, at most %d allowed", n, model.MaxNameLength))
	}
	for _, c := range []struct {
		field string
		kind  model.ChargeKind
	}{{"from_charge", q.FromCharge}, {"to_charge", q.ToCharge}} {
		if c.kind != model.ChargeDebit && c.kind != model.ChargeCredit {
			return model.NewValidationError(c.field, fmt.Sprintf("unknown charge kind %d", int(c.kind)))
		}
	}

	legs := []journal.Leg{unitLeg(from, q.FromCharge), unitLeg(to, q.ToCharge)}
	if err := journal.CheckCompany(q.CompanyID, legs); err != nil {
		return err
	}
	if err := journal.CheckLeaves(legs); err != nil {
		return err
	}
	return journal.CheckBalance(legs)
}

// Expand turns a template and an amount into its two details. Only the
// amount is checked; the equation was checked when the template was saved.
func Expand(q model.QuickTransaction, amount decimal.Decimal, date time.Time, notes string) (model.Detail, model.Detail, error) {
	if !amount.IsPositive() {
		return model.Detail{}, model.Detail{}, model.NewValidationError("amount", "must be positive")
	}
	if problem := model.AmountPrecisionProblem(amount); problem != "" {
		return model.Detail{}, model.Detail{}, model.NewValidationError("amount", problem)
	}
	side := func(accountID int64, charge model.ChargeKind) model.Detail {
		d := model.Detail{
			AccountID:       accountID,
			Debit:           decimal.Zero,
			Credit:          decimal.Zero,
			Notes:           notes,
			TransactionDate: model.Day(date),
		}
		if charge == model.ChargeDebit {
			d.Debit = amount
		} else {
			d.Credit = amount
		}
		return d
	}
	return side(q.AccountFromID, q.FromCharge), side(q.AccountToID, q.ToCharge), nil
}

func detailLines(details ...model.Detail) []model.Line {
	lines := make([]model.Line, len(details))
	for i, d := range details {
		lines[i] = model.Line{AccountID: d.AccountID, Debit: d.Debit, Credit: d.Credit, Notes: d.Notes}
	}
	return lines
}

// CreateQuick validates and saves a quick transaction for the company.
func (s *Service) CreateQuick(companyID int64, q model.QuickTransaction) (model.QuickTransaction, error) {
	q.CompanyID = companyID
	q.Name = strings.TrimSpace(q.Name)
	err := s.store.Transaction(func(tx *store.Tx) error {
		from, err := resolveAccount(tx.Queries, "account_from", q.AccountFromID)
		if err != nil {
			return err
		}
		to, err := resolveAccount(tx.Queries, "account_to", q.AccountToID)
		if err != nil {
			return err
		}
		if err := ValidateQuick(q, from, to); err != nil {
			return err
		}
		q.ID, err = tx.InsertQuick(q)
		return err
	})
	if err != nil {
		s.logger.Debug("quick transaction rejected", zap.Int64("company_id", companyID), zap.String("name", q.Name), zap.Error(err))
		return model.QuickTransaction{}, err
	}
	s.logger.Info("quick transaction created", zap.Int64("company_id", companyID), zap.Int64("quick_id", q.ID), zap.String("name", q.Name))
	return q, nil
}

// ListQuick returns the company's quick transactions by name.
func (s *Service) ListQuick(companyID int64) ([]model.QuickTransaction, error) {
	return s.store.ListQuick(companyID)
}

// GetQuick returns a quick transaction by ID.
func (s *Service) GetQuick(companyID, id int64) (model.QuickTransaction, error) {
	return s.store.GetQuick(companyID, id)
}

// GetQuickByName returns a quick transaction by name.
func (s *Service) GetQuickByName(companyID int64, name string) (model.QuickTransaction, error) {
	return s.store.GetQuickByName(companyID, strings.TrimSpace(name))
}

// DeleteQuick removes a quick transaction.
func (s *Service) DeleteQuick(companyID, id int64) error {
	if err := s.store.DeleteQuick(companyID, id); err != nil {
		return err
	}
	s.logger.Info("quick transaction deleted", zap.Int64("company_id", companyID), zap.Int64("quick_id", id))
	return nil
}

// ExpandQuick loads a template and expands it without posting.
func (s *Service) ExpandQuick(companyID, id int64, amount decimal.Decimal, date time.Time, notes string) (model.Detail, model.Detail, error) {
	q, err := s.store.GetQuick(companyID, id)
	if err != nil {
		return model.Detail{}, model.Detail{}, err
	}
	return Expand(q, amount, date, notes)
}

// SubmitQuick expands a template and posts the result as one transaction.
func (s *Service) SubmitQuick(companyID, id int64, amount decimal.Decimal, date time.Time, notes string) (model.Transaction, error) {
	var txn model.Transaction
	err := s.store.Transaction(func(tx *store.Tx) error {
		q, err := tx.GetQuick(companyID, id)
		if err != nil {
			return err
		}
		from, to, err := Expand(q, amount, date, notes)
		if err != nil {
			return err
		}
		txn, err = journal.PostTx(tx, companyID, date, notes, detailLines(from, to))
		return err
	})
	if err != nil {
		s.logger.Debug("quick submission rejected", zap.Int64("company_id", companyID), zap.Int64("quick_id", id), zap.Error(err))
		return model.Transaction{}, err
	}
	s.logger.Info("quick transaction submitted",
		zap.Int64("company_id", companyID),
		zap.Int64("quick_id", id),
		zap.Int64("transaction_id", txn.ID),
		zap.Stringer("amount", amount),
	)
	return txn, nil
}

func resolveAccount(q *store.Queries, field string, id int64) (model.Account, error) {
	a, err := q.GetAccount(id)
	if errors.Is(err, model.ErrNotFound) {
		return a, model.NewValidationError(field, fmt.Sprintf("account %d does not exist", id))
	}
	return a, err
}
