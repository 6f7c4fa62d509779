package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service manages a company's chart of accounts.
type Service struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an accounts Service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger, now: time.Now}
}

// AccountParams holds the fields of a new account. ParentID 0 creates a
// top-level account; a zero OpeningDate means today.
type AccountParams struct {
	ParentID       int64
	Key            string
	Description    string
	Kind           model.AccountKind
	IsLeaf         bool
	OpeningDate    time.Time
	OpeningBalance decimal.Decimal
}

// AccountUpdate lists the mutable fields of an account. Nil fields are left
// unchanged. Kind and parent are fixed once the account exists.
type AccountUpdate struct {
	Description    *string
	OpeningDate    *time.Time
	OpeningBalance *decimal.Decimal
}

// Create validates and inserts a new account in one atomic unit. Nothing is
// written when validation fails.
func (s *Service) Create(companyID int64, p AccountParams) (model.Account, error) {
	var created model.Account
	err := s.store.Transaction(func(tx *store.Tx) error {
		var err error
		created, err = s.create(tx, companyID, p)
		return err
	})
	if err != nil {
		s.logger.Debug("account rejected", zap.Int64("company_id", companyID), zap.String("key", p.Key), zap.Error(err))
		return model.Account{}, err
	}
	s.logger.Info("account created",
		zap.Int64("company_id", companyID),
		zap.Int64("account_id", created.ID),
		zap.String("key", created.Key),
		zap.Stringer("kind", created.Kind),
	)
	return created, nil
}

func (s *Service) create(tx *store.Tx, companyID int64, p AccountParams) (model.Account, error) {
	if _, err := tx.GetCompany(companyID); err != nil {
		return model.Account{}, err
	}

	a := model.Account{
		CompanyID:      companyID,
		ParentID:       p.ParentID,
		Key:            strings.TrimSpace(p.Key),
		Description:    p.Description,
		Kind:           p.Kind,
		IsLeaf:         p.IsLeaf,
		OpeningDate:    model.Day(p.OpeningDate),
		OpeningBalance: p.OpeningBalance,
	}
	if p.OpeningDate.IsZero() {
		a.OpeningDate = model.Day(s.now())
	}

	if a.Key == "" {
		return a, model.NewValidationError("key", "must not be empty")
	}
	if n := utf8.RuneCountInString(a.Key); n > model.MaxNameLength {
		return a, model.NewValidationError("key", fmt.Sprintf("is %d characters, at most %d allowed", n, model.MaxNameLength))
	}
	if !a.Kind.Valid() {
		return a, model.NewValidationError("kind", fmt.Sprintf("unknown account kind %d", int(a.Kind)))
	}

	if a.ParentID != 0 {
		parent, err := tx.GetAccount(a.ParentID)
		if errors.Is(err, model.ErrNotFound) {
			return a, model.NewValidationError("parent", fmt.Sprintf("account %d does not exist", a.ParentID))
		}
		if err != nil {
			return a, err
		}
		if parent.CompanyID != companyID {
			return a, model.CrossCompanyError{Index: -1, AccountID: parent.ID, AccountCompanyID: parent.CompanyID, CompanyID: companyID}
		}
		if parent.IsLeaf {
			return a, model.NewValidationError("parent", fmt.Sprintf("%s is a leaf account and cannot have children", parent.Key))
		}
		if parent.Kind != a.Kind {
			return a, model.NewValidationError("kind", fmt.Sprintf("%s does not match parent %s kind %s", a.Kind, parent.Key, parent.Kind))
		}
	}

	if err := checkOpeningBalance(a.IsLeaf, a.OpeningBalance); err != nil {
		return a, err
	}

	exists, err := tx.AccountKeyExists(companyID, a.Key)
	if err != nil {
		return a, err
	}
	if exists {
		return a, model.UniqueConstraintViolation{Entity: "account", Key: a.Key, CompanyID: companyID}
	}

	a.ID, err = tx.InsertAccount(a)
	if err != nil {
		return a, err
	}
	return a, nil
}

func checkOpeningBalance(isLeaf bool, balance decimal.Decimal) error {
	if balance.IsZero() {
		return nil
	}
	if !isLeaf {
		return model.NewValidationError("opening_balance", "only leaf accounts carry an opening balance")
	}
	if problem := model.AmountPrecisionProblem(balance); problem != "" {
		return model.NewValidationError("opening_balance", problem)
	}
	return nil
}

// Update changes the description or opening balance of an account.
func (s *Service) Update(companyID, id int64, u AccountUpdate) (model.Account, error) {
	var updated model.Account
	err := s.store.Transaction(func(tx *store.Tx) error {
		a, err := getScoped(tx.Queries, companyID, id)
		if err != nil {
			return err
		}
		if u.Description != nil {
			a.Description = *u.Description
		}
		if u.OpeningDate != nil {
			a.OpeningDate = model.Day(*u.OpeningDate)
		}
		if u.OpeningBalance != nil {
			if err := checkOpeningBalance(a.IsLeaf, *u.OpeningBalance); err != nil {
				return err
			}
			a.OpeningBalance = *u.OpeningBalance
		}
		if err := tx.UpdateAccount(a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	s.logger.Info("account updated", zap.Int64("company_id", companyID), zap.Int64("account_id", id))
	return updated, nil
}

// Delete removes an account and its whole subtree, together with any quick
// transactions that use them. It fails with ProtectedDeleteError while any
// detail or recurring detail still posts to the subtree.
func (s *Service) Delete(companyID, id int64) error {
	var removed int
	err := s.store.Transaction(func(tx *store.Tx) error {
		all, err := tx.ListAccounts(companyID)
		if err != nil {
			return err
		}
		tree, err := BuildTree(all, nil)
		if err != nil {
			return err
		}
		subtree, err := tree.Subtree(id)
		if err != nil {
			return err
		}

		ids := make([]int64, len(subtree))
		for i, a := range subtree {
			// Reverse pre-order puts children before parents.
			ids[len(subtree)-1-i] = a.ID
		}

		details, recurring, err := tx.CountAccountReferences(ids)
		if err != nil {
			return err
		}
		if details > 0 || recurring > 0 {
			return model.ProtectedDeleteError{
				Entity: "account",
				ID:     id,
				Reason: fmt.Sprintf("referenced by %d details and %d recurring details", details, recurring),
			}
		}
		removed = len(ids)
		return tx.DeleteAccounts(ids)
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.Int64("company_id", companyID), zap.Int64("account_id", id), zap.Int("removed", removed))
	return nil
}

// Get returns an account of the company by ID.
func (s *Service) Get(companyID, id int64) (model.Account, error) {
	return getScoped(s.store.Queries, companyID, id)
}

// GetByKey returns an account of the company by key.
func (s *Service) GetByKey(companyID int64, key string) (model.Account, error) {
	return s.store.GetAccountByKey(companyID, strings.TrimSpace(key))
}

// List returns every account of the company ordered by key.
func (s *Service) List(companyID int64) ([]model.Account, error) {
	return s.store.ListAccounts(companyID)
}

// Tree loads the company's accounts and postings and folds all balances.
// It is rebuilt on every call.
func (s *Service) Tree(companyID int64) (*Tree, error) {
	return LoadTree(s.store.Queries, companyID)
}

// LoadTree builds the account tree of a company from q.
func LoadTree(q *store.Queries, companyID int64) (*Tree, error) {
	all, err := q.ListAccounts(companyID)
	if err != nil {
		return nil, err
	}
	details, err := q.ListCompanyDetails(companyID)
	if err != nil {
		return nil, err
	}
	tree, err := BuildTree(all, details)
	if err != nil {
		return nil, fmt.Errorf("building account tree: %w", err)
	}
	return tree, nil
}

// Balance returns the aggregated balance of an account and its descendants.
func (s *Service) Balance(companyID, id int64) (decimal.Decimal, error) {
	tree, err := s.Tree(companyID)
	if err != nil {
		return decimal.Zero, err
	}
	return tree.Balance(id)
}

// TrialBalance holds the per-kind totals of a company.
type TrialBalance struct {
	Asset     decimal.Decimal
	Liability decimal.Decimal
	Equity    decimal.Decimal
}

// Balanced reports whether assets minus liabilities equal equity.
func (tb TrialBalance) Balanced() bool {
	return tb.Asset.Sub(tb.Liability).Equal(tb.Equity)
}

// Err returns a BalanceError when the totals do not balance.
func (tb TrialBalance) Err() error {
	if tb.Balanced() {
		return nil
	}
	return model.BalanceError{Asset: tb.Asset, Liability: tb.Liability, Equity: tb.Equity}
}

// TrialBalance sums the balances of the top-level accounts per kind.
func (s *Service) TrialBalance(companyID int64) (TrialBalance, error) {
	tree, err := s.Tree(companyID)
	if err != nil {
		return TrialBalance{}, err
	}
	tb := TrialBalance{Asset: decimal.Zero, Liability: decimal.Zero, Equity: decimal.Zero}
	for _, root := range tree.Roots() {
		b, err := tree.Balance(root.ID)
		if err != nil {
			return TrialBalance{}, err
		}
		switch root.Kind {
		case model.KindAsset:
			tb.Asset = tb.Asset.Add(b)
		case model.KindLiability:
			tb.Liability = tb.Liability.Add(b)
		case model.KindEquity:
			tb.Equity = tb.Equity.Add(b)
		}
	}
	return tb, nil
}

// ImportChart creates every entry in one atomic unit. Parents must appear
// before their children or already exist in the company.
func (s *Service) ImportChart(companyID int64, entries []ChartEntry) (int, error) {
	err := s.store.Transaction(func(tx *store.Tx) error {
		for i, e := range entries {
			p := AccountParams{
				Key:            e.Key,
				Description:    e.Description,
				Kind:           e.Kind,
				IsLeaf:         e.IsLeaf,
				OpeningDate:    e.OpeningDate,
				OpeningBalance: e.OpeningBalance,
			}
			if e.ParentKey != "" {
				parent, err := tx.GetAccountByKey(companyID, e.ParentKey)
				if errors.Is(err, model.ErrNotFound) {
					return fmt.Errorf("entry %d (%s): %w", i+1, e.Key,
						model.NewValidationError("parent_key", fmt.Sprintf("account %q does not exist", e.ParentKey)))
				}
				if err != nil {
					return err
				}
				p.ParentID = parent.ID
			}
			if _, err := s.create(tx, companyID, p); err != nil {
				return fmt.Errorf("entry %d (%s): %w", i+1, e.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("chart imported", zap.Int64("company_id", companyID), zap.Int("accounts", len(entries)))
	return len(entries), nil
}

// ExportChart returns the company's accounts as chart entries, parents first.
func (s *Service) ExportChart(companyID int64) ([]ChartEntry, error) {
	tree, err := s.Tree(companyID)
	if err != nil {
		return nil, err
	}
	var entries []ChartEntry
	tree.Walk(func(a model.Account, _ int, _ decimal.Decimal) {
		e := ChartEntry{
			Key:            a.Key,
			Description:    a.Description,
			Kind:           a.Kind,
			IsLeaf:         a.IsLeaf,
			OpeningDate:    a.OpeningDate,
			OpeningBalance: a.OpeningBalance,
		}
		if parent, ok := tree.Account(a.ParentID); ok {
			e.ParentKey = parent.Key
		}
		entries = append(entries, e)
	})
	return entries, nil
}

func getScoped(q *store.Queries, companyID, id int64) (model.Account, error) {
	a, err := q.GetAccount(id)
	if err != nil {
		return a, err
	}
	if a.CompanyID != companyID {
		return model.Account{}, fmt.Errorf("account %d: %w", id, model.ErrNotFound)
	}
	return a, nil
}
