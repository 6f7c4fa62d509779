package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ChargeKind says which side of a quick transaction an account is charged on.
type ChargeKind int

const (
	ChargeCredit ChargeKind = 1
	ChargeDebit  ChargeKind = 2
)

func (c ChargeKind) String() string {
	switch c {
	case ChargeCredit:
		return "credit"
	case ChargeDebit:
		return "debit"
	default:
		return fmt.Sprintf("charge(%d)", int(c))
	}
}

// ParseChargeKind accepts "credit" or "debit".
func ParseChargeKind(s string) (ChargeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "cr":
		return ChargeCredit, nil
	case "debit", "dr":
		return ChargeDebit, nil
	}
	return 0, fmt.Errorf("unknown charge kind %q", s)
}

// QuickTransaction is a reusable two-account posting pattern.
type QuickTransaction struct {
	ID            int64
	CompanyID     int64
	Name          string
	AccountFromID int64
	FromCharge    ChargeKind
	AccountToID   int64
	ToCharge      ChargeKind
}

// RecurringTransaction pre-populates new transactions. It is never posted
// itself and does not count toward balances.
type RecurringTransaction struct {
	ID        int64
	CompanyID int64
	Name      string
	Notes     string
	Details   []RecurringDetail
}

// RecurringDetail mirrors Detail for a recurring template.
type RecurringDetail struct {
	ID          int64
	RecurringID int64
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Notes       string
}

// Lines returns the template lines ready to post.
func (r RecurringTransaction) Lines() []Line {
	lines := make([]Line, len(r.Details))
	for i, d := range r.Details {
		lines[i] = Line{AccountID: d.AccountID, Debit: d.Debit, Credit: d.Credit, Notes: d.Notes}
	}
	return lines
}

// AttributeKind is the value type of a user-defined attribute.
type AttributeKind int

const (
	AttributeText   AttributeKind = 0
	AttributeNumber AttributeKind = 1
	AttributeArray  AttributeKind = 2
	AttributeChoice AttributeKind = 3
	AttributeDate   AttributeKind = 4
)

func (k AttributeKind) String() string {
	switch k {
	case AttributeText:
		return "text"
	case AttributeNumber:
		return "number"
	case AttributeArray:
		return "array"
	case AttributeChoice:
		return "choice"
	case AttributeDate:
		return "date"
	default:
		return fmt.Sprintf("attribute(%d)", int(k))
	}
}

// ParseAttributeKind accepts the lower-case kind names.
func ParseAttributeKind(s string) (AttributeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return AttributeText, nil
	case "number":
		return AttributeNumber, nil
	case "array":
		return AttributeArray, nil
	case "choice":
		return AttributeChoice, nil
	case "date":
		return AttributeDate, nil
	}
	return 0, fmt.Errorf("unknown attribute kind %q", s)
}

// Attribute is a company-scoped custom field attachable to details.
type Attribute struct {
	ID        int64
	CompanyID int64
	Name      string
	Kind      AttributeKind
	Metadata  string // semicolon-separated choices for AttributeChoice
}

// Choices splits Metadata into its choices.
func (a Attribute) Choices() []string {
	if a.Metadata == "" {
		return nil
	}
	return strings.Split(a.Metadata, ";")
}

// AttributeValue is the value of one attribute on one detail.
type AttributeValue struct {
	DetailID    int64
	AttributeID int64
	Value       string
}
