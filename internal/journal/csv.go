package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Header is the CSV header of a journal import file. Rows sharing an entry
// value form one transaction.
const Header = "entry,date,account_key,debit,credit,notes,transaction_notes"

const (
	numFields   = 7
	dateFormat  = "2006-01-02"
	colEntry    = 0
	colDate     = 1
	colAcctKey  = 2
	colDebit    = 3
	colCredit   = 4
	colNotes    = 5
	colTxnNotes = 6
)

// Entry is one transaction read from a journal CSV.
type Entry struct {
	Ref   string
	Date  time.Time
	Notes string
	Lines []EntryLine
}

// EntryLine is a line that still refers to its account by key.
type EntryLine struct {
	AccountKey string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Notes      string
}

// ReadEntries reads a journal CSV and groups its rows by entry, keeping the
// order in which entries first appear. The first row is a header.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	byRef := make(map[string]int)
	for i, rec := range records[1:] {
		row := i + 2
		ref := strings.TrimSpace(rec[colEntry])
		if ref == "" {
			return nil, fmt.Errorf("row %d: entry is required", row)
		}

		date, err := time.Parse(dateFormat, strings.TrimSpace(rec[colDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[colDate], err)
		}
		line, err := unmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		idx, seen := byRef[ref]
		if !seen {
			idx = len(entries)
			byRef[ref] = idx
			entries = append(entries, Entry{Ref: ref, Date: date, Notes: rec[colTxnNotes]})
		}
		e := &entries[idx]
		if !e.Date.Equal(date) {
			return nil, fmt.Errorf("row %d: entry %s has conflicting dates %s and %s",
				row, ref, e.Date.Format(dateFormat), date.Format(dateFormat))
		}
		if e.Notes == "" {
			e.Notes = rec[colTxnNotes]
		}
		e.Lines = append(e.Lines, line)
	}
	return entries, nil
}

func unmarshalLine(rec []string) (EntryLine, error) {
	line := EntryLine{
		AccountKey: strings.TrimSpace(rec[colAcctKey]),
		Debit:      decimal.Zero,
		Credit:     decimal.Zero,
		Notes:      rec[colNotes],
	}
	if line.AccountKey == "" {
		return line, fmt.Errorf("account_key is required")
	}

	var err error
	if s := strings.TrimSpace(rec[colDebit]); s != "" {
		if line.Debit, err = decimal.NewFromString(s); err != nil {
			return line, fmt.Errorf("parsing debit %q: %w", s, err)
		}
	}
	if s := strings.TrimSpace(rec[colCredit]); s != "" {
		if line.Credit, err = decimal.NewFromString(s); err != nil {
			return line, fmt.Errorf("parsing credit %q: %w", s, err)
		}
	}
	return line, nil
}
