// Package activity builds the chronological running-balance statement of an
// account and its descendants.
package activity

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// OpeningNotes labels the synthetic opening-balance rows.
const OpeningNotes = "Opening Balance"

// Row is one statement line. Opening rows have no transaction.
type Row struct {
	Date           time.Time
	AccountID      int64
	AccountKey     string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Notes          string
	TransactionID  int64
	TransactionRef string
	DetailID       int64
	Opening        bool
	Balance        decimal.Decimal // running balance after this row
}

// Statement is the activity of one account.
type Statement struct {
	Account model.Account
	Rows    []Row
	Closing decimal.Decimal
}

// Build produces the statement of accountID from an already loaded tree. It
// merges every posting in the subtree with one opening row per leaf that has
// a nonzero opening balance, orders them and accumulates the balance with
// the account's sign rule.
//
// Rows on the same date are ordered opening rows first (by account key),
// then postings by transaction ID and detail ID.
func Build(tree *accounts.Tree, accountID int64) (Statement, error) {
	account, ok := tree.Account(accountID)
	if !ok {
		return Statement{}, fmt.Errorf("account %d: %w", accountID, model.ErrNotFound)
	}

	details, err := tree.Details(accountID)
	if err != nil {
		return Statement{}, err
	}
	leaves, err := tree.Leaves(accountID)
	if err != nil {
		return Statement{}, err
	}

	rows := make([]Row, 0, len(details)+len(leaves))
	for _, leaf := range leaves {
		if leaf.OpeningBalance.IsZero() {
			continue
		}
		rows = append(rows, openingRow(leaf))
	}
	for _, d := range details {
		a, _ := tree.Account(d.AccountID)
		rows = append(rows, Row{
			Date:           d.TransactionDate,
			AccountID:      d.AccountID,
			AccountKey:     a.Key,
			Debit:          d.Debit,
			Credit:         d.Credit,
			Notes:          d.Notes,
			TransactionID:  d.TransactionID,
			TransactionRef: id.FormatTransactionRef(d.TransactionID),
			DetailID:       d.ID,
		})
	}

	slices.SortStableFunc(rows, compareRows)

	balance := decimal.Zero
	for i := range rows {
		balance = balance.Add(account.Kind.Signed(rows[i].Debit, rows[i].Credit))
		rows[i].Balance = balance
	}
	return Statement{Account: account, Rows: rows, Closing: balance}, nil
}

// openingRow converts a leaf's opening balance into a debit or credit in
// the account's normal direction. A negative balance lands on the other side.
func openingRow(leaf model.Account) Row {
	r := Row{
		Date:       leaf.OpeningDate,
		AccountID:  leaf.ID,
		AccountKey: leaf.Key,
		Debit:      decimal.Zero,
		Credit:     decimal.Zero,
		Notes:      OpeningNotes,
		Opening:    true,
	}
	amount := leaf.OpeningBalance.Abs()
	debitSide := leaf.Kind == model.KindAsset
	if leaf.OpeningBalance.IsNegative() {
		debitSide = !debitSide
	}
	if debitSide {
		r.Debit = amount
	} else {
		r.Credit = amount
	}
	return r
}

func compareRows(a, b Row) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if a.Opening != b.Opening {
		if a.Opening {
			return -1
		}
		return 1
	}
	if a.Opening {
		return cmp.Compare(a.AccountKey, b.AccountKey)
	}
	if c := cmp.Compare(a.TransactionID, b.TransactionID); c != 0 {
		return c
	}
	return cmp.Compare(a.DetailID, b.DetailID)
}

// Service reads statements from the store.
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates an activity Service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Statement reloads the company's tree and builds the statement of an
// account. Nothing is cached between calls.
func (s *Service) Statement(companyID, accountID int64) (Statement, error) {
	tree, err := accounts.LoadTree(s.store.Queries, companyID)
	if err != nil {
		return Statement{}, err
	}
	st, err := Build(tree, accountID)
	if err != nil {
		return Statement{}, err
	}
	s.logger.Debug("statement built", zap.Int64("company_id", companyID), zap.Int64("account_id", accountID), zap.Int("rows", len(st.Rows)))
	return st, nil
}
