package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxNameLength bounds account keys, company names and template names in
// characters; the MySQL schema stores them as VARCHAR(255).
const MaxNameLength = 255

// AccountKind classifies accounts in the chart of accounts.
// Every posting must keep ASSETS - LIABILITIES = EQUITY balanced.
type AccountKind int

const (
	KindAsset     AccountKind = 1 // e.g. car, house, cash
	KindLiability AccountKind = 2 // e.g. taxes payable, notes payable
	KindEquity    AccountKind = 3 // e.g. retained earnings, revenue, expenses
)

// Valid reports whether k is one of the known kinds.
func (k AccountKind) Valid() bool {
	return k == KindAsset || k == KindLiability || k == KindEquity
}

func (k AccountKind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindLiability:
		return "liability"
	case KindEquity:
		return "equity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseAccountKind accepts "asset", "liability", "equity" (any case) or the numeric code.
func ParseAccountKind(s string) (AccountKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asset", "1":
		return KindAsset, nil
	case "liability", "2":
		return KindLiability, nil
	case "equity", "3":
		return KindEquity, nil
	}
	return 0, fmt.Errorf("unknown account kind %q", s)
}

// DebitSign is +1 when a debit increases accounts of this kind, -1 otherwise.
// Asset accounts increase with a debit; liability and equity accounts increase with a credit.
func (k AccountKind) DebitSign() int64 {
	if k == KindAsset {
		return 1
	}
	return -1
}

// Signed returns the effect of a debit/credit pair on an account of this kind.
func (k AccountKind) Signed(debit, credit decimal.Decimal) decimal.Decimal {
	return debit.Sub(credit).Mul(decimal.NewFromInt(k.DebitSign()))
}

// Account is a node in a company's chart of accounts.
type Account struct {
	ID             int64
	CompanyID      int64
	ParentID       int64 // 0 = top-level
	Key            string
	Description    string
	Kind           AccountKind
	IsLeaf         bool
	OpeningDate    time.Time
	OpeningBalance decimal.Decimal // in the account's normal direction
}

func (a Account) String() string {
	return a.Key + " - " + a.Description
}
