package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

const dateFormat = "2006-01-02"

// parseDate reads YYYY-MM-DD; empty means today.
func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return model.Day(time.Now()), nil
	}
	t, err := time.Parse(dateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, model.NewValidationError("date", fmt.Sprintf("%q is not YYYY-MM-DD", s))
	}
	return t, nil
}

// parseAmount reads a decimal; empty means zero.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, model.NewValidationError(field, fmt.Sprintf("%q is not a number", s))
	}
	return d, nil
}

// lineSpec is one --line flag before its account key is resolved.
type lineSpec struct {
	DetailID   int64
	AccountKey string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Notes      string
}

// parseLineSpec reads "[DETAIL_ID=]ACCOUNT:DEBIT:CREDIT[:NOTES]". Either
// amount may be left empty. Notes may contain colons.
func parseLineSpec(s string) (lineSpec, error) {
	var spec lineSpec
	if head, rest, ok := strings.Cut(s, "="); ok && !strings.Contains(head, ":") {
		n, err := strconv.ParseInt(strings.TrimSpace(head), 10, 64)
		if err != nil || n <= 0 {
			return spec, fmt.Errorf("line %q: invalid detail id %q", s, head)
		}
		spec.DetailID = n
		s = rest
	}

	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return spec, fmt.Errorf("line %q: want ACCOUNT:DEBIT:CREDIT[:NOTES]", s)
	}
	spec.AccountKey = strings.TrimSpace(parts[0])
	if spec.AccountKey == "" {
		return spec, fmt.Errorf("line %q: account is empty", s)
	}
	var err error
	if spec.Debit, err = parseAmount("debit", parts[1]); err != nil {
		return spec, err
	}
	if spec.Credit, err = parseAmount("credit", parts[2]); err != nil {
		return spec, err
	}
	if len(parts) == 4 {
		spec.Notes = parts[3]
	}
	return spec, nil
}

// resolveLines parses every --line flag and looks up its account.
func (a *app) resolveLines(companyID int64, raw []string) ([]model.Line, error) {
	lines := make([]model.Line, 0, len(raw))
	for i, r := range raw {
		spec, err := parseLineSpec(r)
		if err != nil {
			return nil, err
		}
		acct, err := a.account(companyID, spec.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines = append(lines, model.Line{
			DetailID:  spec.DetailID,
			AccountID: acct.ID,
			Debit:     spec.Debit,
			Credit:    spec.Credit,
			Notes:     spec.Notes,
		})
	}
	return lines, nil
}
