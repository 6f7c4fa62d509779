package templates

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// CreateRecurringFromTransaction saves a posted transaction's notes and
// lines as a named recurring transaction.
func (s *Service) CreateRecurringFromTransaction(companyID, txID int64, name string) (model.RecurringTransaction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.RecurringTransaction{}, model.NewValidationError("name", "must not be empty")
	}

	var rec model.RecurringTransaction
	err := s.store.Transaction(func(tx *store.Tx) error {
		txn, err := tx.GetTransaction(companyID, txID)
		if err != nil {
			return err
		}
		rec = model.RecurringTransaction{CompanyID: companyID, Name: name, Notes: txn.Notes}
		if rec.ID, err = tx.InsertRecurring(rec); err != nil {
			return err
		}
		return insertRecurringLines(tx, &rec, txn.Lines())
	})
	if err != nil {
		return model.RecurringTransaction{}, err
	}
	s.logger.Info("recurring transaction created",
		zap.Int64("company_id", companyID),
		zap.Int64("recurring_id", rec.ID),
		zap.Int64("from_transaction_id", txID),
	)
	return rec, nil
}

// EditRecurring replaces the name, notes and lines of a recurring
// transaction. The lines follow the same rules as a posted transaction.
func (s *Service) EditRecurring(companyID, id int64, name, notes string, lines []model.Line) (model.RecurringTransaction, error) {
	name = strings.TrimSpace(name)
	var rec model.RecurringTransaction
	err := s.store.Transaction(func(tx *store.Tx) error {
		var err error
		if rec, err = tx.GetRecurring(companyID, id); err != nil {
			return err
		}
		if name == "" {
			return model.NewValidationError("name", "must not be empty")
		}
		if err := journal.CheckLines(tx.Queries, companyID, lines); err != nil {
			return err
		}

		rec.Name, rec.Notes, rec.Details = name, notes, nil
		if err := tx.UpdateRecurring(rec); err != nil {
			return err
		}
		if err := tx.DeleteRecurringDetails(id); err != nil {
			return err
		}
		return insertRecurringLines(tx, &rec, lines)
	})
	if err != nil {
		s.logger.Debug("recurring edit rejected", zap.Int64("company_id", companyID), zap.Int64("recurring_id", id), zap.Error(err))
		return model.RecurringTransaction{}, err
	}
	s.logger.Info("recurring transaction edited", zap.Int64("company_id", companyID), zap.Int64("recurring_id", id))
	return rec, nil
}

func insertRecurringLines(tx *store.Tx, rec *model.RecurringTransaction, lines []model.Line) error {
	for _, l := range lines {
		d := model.RecurringDetail{
			RecurringID: rec.ID,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Notes:       l.Notes,
		}
		var err error
		if d.ID, err = tx.InsertRecurringDetail(d); err != nil {
			return err
		}
		rec.Details = append(rec.Details, d)
	}
	return nil
}

// ListRecurring returns the company's recurring transactions by name.
func (s *Service) ListRecurring(companyID int64) ([]model.RecurringTransaction, error) {
	return s.store.ListRecurring(companyID)
}

// GetRecurring returns a recurring transaction with its lines.
func (s *Service) GetRecurring(companyID, id int64) (model.RecurringTransaction, error) {
	return s.store.GetRecurring(companyID, id)
}

// DeleteRecurring removes a recurring transaction.
func (s *Service) DeleteRecurring(companyID, id int64) error {
	err := s.store.Transaction(func(tx *store.Tx) error {
		return tx.DeleteRecurring(companyID, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("recurring transaction deleted", zap.Int64("company_id", companyID), zap.Int64("recurring_id", id))
	return nil
}

// Prefill returns the notes and lines a new transaction should start from.
func (s *Service) Prefill(companyID, id int64) (string, []model.Line, error) {
	rec, err := s.store.GetRecurring(companyID, id)
	if err != nil {
		return "", nil, err
	}
	return rec.Notes, rec.Lines(), nil
}

// PostRecurring posts a recurring transaction's lines on date.
func (s *Service) PostRecurring(companyID, id int64, date time.Time) (model.Transaction, error) {
	var txn model.Transaction
	err := s.store.Transaction(func(tx *store.Tx) error {
		rec, err := tx.GetRecurring(companyID, id)
		if err != nil {
			return err
		}
		txn, err = journal.PostTx(tx, companyID, date, rec.Notes, rec.Lines())
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}
	s.logger.Info("recurring transaction posted",
		zap.Int64("company_id", companyID),
		zap.Int64("recurring_id", id),
		zap.Int64("transaction_id", txn.ID),
	)
	return txn, nil
}
