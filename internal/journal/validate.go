package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// Leg is one line to validate, with its account already resolved.
type Leg struct {
	Account model.Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// LegsFromLines pairs lines with their resolved accounts.
func LegsFromLines(lines []model.Line, accounts []model.Account) []Leg {
	legs := make([]Leg, len(lines))
	for i, l := range lines {
		legs[i] = Leg{Account: accounts[i], Debit: l.Debit, Credit: l.Credit}
	}
	return legs
}

// Totals returns the signed total of the legs for each account kind.
func Totals(legs []Leg) (asset, liability, equity decimal.Decimal) {
	asset, liability, equity = decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range legs {
		v := l.Account.Kind.Signed(l.Debit, l.Credit)
		switch l.Account.Kind {
		case model.KindAsset:
			asset = asset.Add(v)
		case model.KindLiability:
			liability = liability.Add(v)
		case model.KindEquity:
			equity = equity.Add(v)
		}
	}
	return asset, liability, equity
}

// CheckShape validates each leg on its own: amounts are non-negative, fit
// the stored precision, and a leg is a debit or a credit but never both.
// A leg with both sides zero is accepted.
func CheckShape(legs []Leg) error {
	for i, l := range legs {
		for _, side := range []struct {
			field  string
			amount decimal.Decimal
		}{{"debit", l.Debit}, {"credit", l.Credit}} {
			if side.amount.IsNegative() {
				return model.ValidationError{Field: side.field, Index: i, Message: "must not be negative"}
			}
			if problem := model.AmountPrecisionProblem(side.amount); problem != "" {
				return model.ValidationError{Field: side.field, Index: i, Message: problem}
			}
		}
		if !l.Debit.IsZero() && !l.Credit.IsZero() {
			return model.DetailShapeError{Index: i, Debit: l.Debit, Credit: l.Credit}
		}
	}
	return nil
}

// CheckCompany reports the first leg whose account belongs to another company.
func CheckCompany(companyID int64, legs []Leg) error {
	for i, l := range legs {
		if l.Account.CompanyID != companyID {
			return model.CrossCompanyError{
				Index:            i,
				AccountID:        l.Account.ID,
				AccountCompanyID: l.Account.CompanyID,
				CompanyID:        companyID,
			}
		}
	}
	return nil
}

// CheckLeaves reports the first leg that posts to a non-leaf account.
func CheckLeaves(legs []Leg) error {
	for i, l := range legs {
		if !l.Account.IsLeaf {
			return model.ValidationError{
				Field:   "account",
				Index:   i,
				Message: fmt.Sprintf("%s is not a leaf account", l.Account.Key),
			}
		}
	}
	return nil
}

// CheckBalance enforces ASSETS - LIABILITIES = EQUITY over the legs.
func CheckBalance(legs []Leg) error {
	asset, liability, equity := Totals(legs)
	if !asset.Sub(liability).Equal(equity) {
		return model.BalanceError{Asset: asset, Liability: liability, Equity: equity}
	}
	return nil
}

// Validate runs every check in order: line count, per-line shape, company,
// leaf accounts, then the balance equation.
func Validate(companyID int64, legs []Leg) error {
	if len(legs) < 2 {
		return model.InsufficientLinesError{Count: len(legs)}
	}
	if err := CheckShape(legs); err != nil {
		return err
	}
	if err := CheckCompany(companyID, legs); err != nil {
		return err
	}
	if err := CheckLeaves(legs); err != nil {
		return err
	}
	return CheckBalance(legs)
}
