package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

const (
	numFields         = 7
	colKey            = 0
	colDescription    = 1
	colKind           = 2
	colParentKey      = 3
	colIsLeaf         = 4
	colOpeningDate    = 5
	colOpeningBalance = 6
)

var chartHeader = []string{"key", "description", "kind", "parent_key", "is_leaf", "opening_date", "opening_balance"}

// ChartEntry is one row of a chart of accounts file. Parents are referenced
// by key so a chart can be loaded into any company.
type ChartEntry struct {
	Key            string
	Description    string
	Kind           model.AccountKind
	ParentKey      string
	IsLeaf         bool
	OpeningDate    time.Time // zero means today
	OpeningBalance decimal.Decimal
}

// ReadAccounts reads a chart of accounts CSV. The first row is a header.
func ReadAccounts(r io.Reader) ([]ChartEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []ChartEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteAccounts writes entries in the format ReadAccounts accepts.
func WriteAccounts(w io.Writer, entries []ChartEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(chartHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts a ChartEntry to a CSV row.
func MarshalEntry(e ChartEntry) []string {
	row := make([]string, numFields)
	row[colKey] = e.Key
	row[colDescription] = e.Description
	row[colKind] = e.Kind.String()
	row[colParentKey] = e.ParentKey
	row[colIsLeaf] = strconv.FormatBool(e.IsLeaf)
	if !e.OpeningDate.IsZero() {
		row[colOpeningDate] = e.OpeningDate.Format("2006-01-02")
	}
	if !e.OpeningBalance.IsZero() {
		row[colOpeningBalance] = e.OpeningBalance.StringFixed(2)
	}
	return row
}

// UnmarshalEntry converts a CSV row to a ChartEntry.
func UnmarshalEntry(record []string) (ChartEntry, error) {
	if len(record) != numFields {
		return ChartEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	kind, err := model.ParseAccountKind(record[colKind])
	if err != nil {
		return ChartEntry{}, err
	}

	e := ChartEntry{
		Key:         strings.TrimSpace(record[colKey]),
		Description: record[colDescription],
		Kind:        kind,
		ParentKey:   strings.TrimSpace(record[colParentKey]),
	}

	if s := strings.TrimSpace(record[colIsLeaf]); s != "" {
		if e.IsLeaf, err = strconv.ParseBool(s); err != nil {
			return ChartEntry{}, fmt.Errorf("parsing is_leaf %q: %w", s, err)
		}
	}
	if s := strings.TrimSpace(record[colOpeningDate]); s != "" {
		if e.OpeningDate, err = time.Parse("2006-01-02", s); err != nil {
			return ChartEntry{}, fmt.Errorf("parsing opening_date %q: %w", s, err)
		}
	}
	if s := strings.TrimSpace(record[colOpeningBalance]); s != "" {
		if e.OpeningBalance, err = decimal.NewFromString(s); err != nil {
			return ChartEntry{}, fmt.Errorf("parsing opening_balance %q: %w", s, err)
		}
	}
	return e, nil
}
