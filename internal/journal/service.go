package journal

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service posts, edits and removes transactions. Every mutation runs in one
// store transaction: either all of its rows are written or none are.
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates a journal Service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Post validates lines and records them as a new transaction.
func (s *Service) Post(companyID int64, date time.Time, notes string, lines []model.Line) (model.Transaction, error) {
	var txn model.Transaction
	err := s.store.Transaction(func(tx *store.Tx) error {
		var err error
		txn, err = PostTx(tx, companyID, date, notes, lines)
		return err
	})
	if err != nil {
		s.logger.Debug("transaction rejected", zap.Int64("company_id", companyID), zap.Error(err))
		return model.Transaction{}, err
	}
	s.logger.Info("transaction posted",
		zap.Int64("company_id", companyID),
		zap.Int64("transaction_id", txn.ID),
		zap.Int("lines", len(txn.Details)),
	)
	return txn, nil
}

// PostTx is Post inside a store transaction owned by the caller, so other
// writes can commit or roll back together with the posting.
func PostTx(tx *store.Tx, companyID int64, date time.Time, notes string, lines []model.Line) (model.Transaction, error) {
	if err := checkHeader(date); err != nil {
		return model.Transaction{}, err
	}
	if err := CheckLines(tx.Queries, companyID, lines); err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{CompanyID: companyID, Date: model.Day(date), Notes: notes}
	var err error
	txn.ID, err = tx.InsertTransaction(txn)
	if err != nil {
		return model.Transaction{}, err
	}
	for _, l := range lines {
		d := model.Detail{
			TransactionID:   txn.ID,
			AccountID:       l.AccountID,
			Debit:           l.Debit,
			Credit:          l.Credit,
			Notes:           l.Notes,
			TransactionDate: txn.Date,
		}
		if d.ID, err = tx.InsertDetail(d); err != nil {
			return model.Transaction{}, err
		}
		txn.Details = append(txn.Details, d)
	}
	return txn, nil
}

// Edit replaces the date, notes and line set of a transaction. Lines whose
// DetailID belongs to the transaction are updated in place, lines without
// one are inserted, and details not mentioned are deleted. The edit is
// validated before any write and commits as a single unit.
func (s *Service) Edit(companyID, txID int64, date time.Time, notes string, lines []model.Line) (model.Transaction, error) {
	var txn model.Transaction
	err := s.store.Transaction(func(tx *store.Tx) error {
		existing, err := tx.GetTransaction(companyID, txID)
		if err != nil {
			return err
		}
		if err := checkHeader(date); err != nil {
			return err
		}
		if err := CheckLines(tx.Queries, companyID, lines); err != nil {
			return err
		}

		current := make(map[int64]bool, len(existing.Details))
		for _, d := range existing.Details {
			current[d.ID] = true
		}
		kept := make(map[int64]bool, len(lines))
		for i, l := range lines {
			if l.DetailID == 0 {
				continue
			}
			if !current[l.DetailID] {
				return model.ValidationError{Field: "detail", Index: i, Message: fmt.Sprintf("detail %d is not part of transaction %d", l.DetailID, txID)}
			}
			if kept[l.DetailID] {
				return model.ValidationError{Field: "detail", Index: i, Message: fmt.Sprintf("detail %d appears twice", l.DetailID)}
			}
			kept[l.DetailID] = true
		}

		existing.Date = model.Day(date)
		existing.Notes = notes
		if err := tx.UpdateTransaction(existing); err != nil {
			return err
		}

		for _, d := range existing.Details {
			if !kept[d.ID] {
				if err := tx.DeleteDetail(d.ID); err != nil {
					return err
				}
			}
		}
		for _, l := range lines {
			d := model.Detail{
				ID:            l.DetailID,
				TransactionID: txID,
				AccountID:     l.AccountID,
				Debit:         l.Debit,
				Credit:        l.Credit,
				Notes:         l.Notes,
			}
			if d.ID != 0 {
				err = tx.UpdateDetail(d)
			} else {
				_, err = tx.InsertDetail(d)
			}
			if err != nil {
				return err
			}
		}

		txn, err = tx.GetTransaction(companyID, txID)
		return err
	})
	if err != nil {
		s.logger.Debug("edit rejected", zap.Int64("company_id", companyID), zap.Int64("transaction_id", txID), zap.Error(err))
		return model.Transaction{}, err
	}
	s.logger.Info("transaction edited",
		zap.Int64("company_id", companyID),
		zap.Int64("transaction_id", txID),
		zap.Int("lines", len(txn.Details)),
	)
	return txn, nil
}

// Delete removes a transaction with its details.
func (s *Service) Delete(companyID, txID int64) error {
	err := s.store.Transaction(func(tx *store.Tx) error {
		return tx.DeleteTransaction(companyID, txID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("transaction deleted", zap.Int64("company_id", companyID), zap.Int64("transaction_id", txID))
	return nil
}

// Get returns a transaction of the company with its details.
func (s *Service) Get(companyID, txID int64) (model.Transaction, error) {
	return s.store.GetTransaction(companyID, txID)
}

// List returns the company's transaction headers ordered by date.
func (s *Service) List(companyID int64) ([]model.Transaction, error) {
	return s.store.ListTransactions(companyID)
}

// ImportCSV reads a journal CSV and posts every entry. All entries commit
// together; the first invalid entry rolls back the whole file.
func (s *Service) ImportCSV(companyID int64, r io.Reader) (int, error) {
	entries, err := ReadEntries(r)
	if err != nil {
		return 0, err
	}

	err = s.store.Transaction(func(tx *store.Tx) error {
		for _, e := range entries {
			lines := make([]model.Line, len(e.Lines))
			for i, el := range e.Lines {
				a, err := tx.GetAccountByKey(companyID, el.AccountKey)
				if errors.Is(err, model.ErrNotFound) {
					return fmt.Errorf("entry %s: %w", e.Ref, model.ValidationError{
						Field: "account_key", Index: i, Message: fmt.Sprintf("account %q does not exist", el.AccountKey),
					})
				}
				if err != nil {
					return err
				}
				lines[i] = model.Line{AccountID: a.ID, Debit: el.Debit, Credit: el.Credit, Notes: el.Notes}
			}
			if _, err := PostTx(tx, companyID, e.Date, e.Notes, lines); err != nil {
				return fmt.Errorf("entry %s: %w", e.Ref, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("journal import rejected", zap.Int64("company_id", companyID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("journal imported", zap.Int64("company_id", companyID), zap.Int("entries", len(entries)))
	return len(entries), nil
}

func checkHeader(date time.Time) error {
	if date.IsZero() {
		return model.NewValidationError("date", "is required")
	}
	return nil
}

// CheckLines resolves every line's account through q and runs Validate. An
// unknown account is reported as a validation error on its line.
func CheckLines(q *store.Queries, companyID int64, lines []model.Line) error {
	if len(lines) < 2 {
		return model.InsufficientLinesError{Count: len(lines)}
	}
	accounts := make([]model.Account, len(lines))
	for i, l := range lines {
		a, err := q.GetAccount(l.AccountID)
		if errors.Is(err, model.ErrNotFound) {
			return model.ValidationError{Field: "account", Index: i, Message: fmt.Sprintf("account %d does not exist", l.AccountID)}
		}
		if err != nil {
			return err
		}
		accounts[i] = a
	}
	return Validate(companyID, LegsFromLines(lines, accounts))
}
