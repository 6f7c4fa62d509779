// Package display renders ledger data as aligned plain-text tables.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/activity"
	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

const dateFormat = "2006-01-02"

// Formatter prints amounts in one currency.
type Formatter struct {
	currency *money.Currency
}

// NewFormatter returns a Formatter for an ISO 4217 code such as "USD".
func NewFormatter(code string) (*Formatter, error) {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if cur == nil {
		return nil, fmt.Errorf("unknown currency %q", code)
	}
	return &Formatter{currency: cur}, nil
}

// Amount formats d with the currency's symbol, grouping and fraction digits.
// Digits beyond the currency fraction are rounded half away from zero.
func (f *Formatter) Amount(d decimal.Decimal) string {
	minor := d.Shift(int32(f.currency.Fraction)).Round(0).IntPart()
	return money.New(minor, f.currency.Code).Display()
}

// blank renders zero as an empty cell so debit/credit columns read naturally.
func (f *Formatter) blank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return f.Amount(d)
}

// WriteStatement prints an activity statement, one row per posting.
func WriteStatement(w io.Writer, f *Formatter, st activity.Statement) error {
	fmt.Fprintf(w, "%s %s (%s)\n", st.Account.Key, st.Account.Description, st.Account.Kind)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tRef\tAccount\tDebit\tCredit\tBalance\tNotes")
	for _, r := range st.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format(dateFormat), r.TransactionRef, r.AccountKey,
			f.blank(r.Debit), f.blank(r.Credit), f.Amount(r.Balance), r.Notes)
	}
	fmt.Fprintf(tw, "\t\t\t\tClosing\t%s\t\n", f.Amount(st.Closing))
	return tw.Flush()
}

// WriteTree prints the chart of accounts indented by depth with each
// account's aggregated balance.
func WriteTree(w io.Writer, f *Formatter, tree *accounts.Tree) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Key\tDescription\tKind\tBalance")
	tree.Walk(func(a model.Account, depth int, balance decimal.Decimal) {
		key := strings.Repeat("  ", depth) + a.Key
		if !a.IsLeaf {
			key += "/"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key, a.Description, a.Kind, f.Amount(balance))
	})
	return tw.Flush()
}

// WriteTrialBalance prints the per-kind totals and whether they balance.
func WriteTrialBalance(w io.Writer, f *Formatter, tb accounts.TrialBalance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Assets\t%s\n", f.Amount(tb.Asset))
	fmt.Fprintf(tw, "Liabilities\t%s\n", f.Amount(tb.Liability))
	fmt.Fprintf(tw, "Equity\t%s\n", f.Amount(tb.Equity))
	status := "balanced"
	if !tb.Balanced() {
		status = "OUT OF BALANCE by " + f.Amount(tb.Asset.Sub(tb.Liability).Sub(tb.Equity))
	}
	fmt.Fprintf(tw, "Status\t%s\n", status)
	return tw.Flush()
}

// WriteTransaction prints a transaction header and its lines. keyOf maps
// account IDs to keys; unknown IDs print as numbers.
func WriteTransaction(w io.Writer, f *Formatter, txn model.Transaction, keyOf func(int64) string) error {
	fmt.Fprintf(w, "%s  %s  %s\n", id.FormatTransactionRef(txn.ID), txn.Date.Format(dateFormat), txn.Notes)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Line\tDetail\tAccount\tDebit\tCredit\tNotes")
	for i, d := range txn.Details {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			id.FormatLineRef(txn.ID, i), d.ID, accountLabel(keyOf, d.AccountID),
			f.blank(d.Debit), f.blank(d.Credit), d.Notes)
	}
	return tw.Flush()
}

// WriteTransactions prints one summary line per transaction.
func WriteTransactions(w io.Writer, f *Formatter, txns []model.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Ref\tDate\tLines\tAmount\tNotes")
	for _, t := range txns {
		total := decimal.Zero
		for _, d := range t.Details {
			total = total.Add(d.Debit)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			id.FormatTransactionRef(t.ID), t.Date.Format(dateFormat), len(t.Details), f.Amount(total), t.Notes)
	}
	return tw.Flush()
}

func accountLabel(keyOf func(int64) string, accountID int64) string {
	if keyOf != nil {
		if k := keyOf(accountID); k != "" {
			return k
		}
	}
	return fmt.Sprintf("#%d", accountID)
}
