package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// ChaseParser reads Chase checking account CSV exports. Columns are located
// by header name, so reordered or extra columns are tolerated.
type ChaseParser struct{}

const chaseDateFormat = "01/02/2006"

// Header names in a Chase export.
const (
	chaseHdrDate   = "posting date"
	chaseHdrDesc   = "description"
	chaseHdrAmount = "amount"
	chaseHdrType   = "type"
	chaseHdrCheck  = "check or slip #"
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse returns one BankTransaction per data row. Amounts must fit the
// ledger's precision.
func (p *ChaseParser) Parse(r io.Reader) ([]BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	cols, err := chaseColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []BankTransaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading chase CSV: %w", err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d: want %d fields, got %d", line, len(header), len(rec))
		}
		txn, err := cols.row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// chaseLayout holds column indexes; check is -1 when the export has none.
type chaseLayout struct {
	date, desc, amount, kind, check int
}

func chaseColumns(header []string) (chaseLayout, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	l := chaseLayout{check: -1}
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{chaseHdrDate, &l.date},
		{chaseHdrDesc, &l.desc},
		{chaseHdrAmount, &l.amount},
		{chaseHdrType, &l.kind},
	} {
		i, ok := idx[c.name]
		if !ok {
			return l, fmt.Errorf("chase CSV: missing %q column", c.name)
		}
		*c.dst = i
	}
	if i, ok := idx[chaseHdrCheck]; ok {
		l.check = i
	}
	return l, nil
}

func (l chaseLayout) row(rec []string) (BankTransaction, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rec[l.date]))
	if err != nil {
		return BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec[l.date], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[l.amount]))
	if err != nil {
		return BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[l.amount], err)
	}
	if problem := model.AmountPrecisionProblem(amount); problem != "" {
		return BankTransaction{}, fmt.Errorf("amount %s %s", amount, problem)
	}

	desc := strings.TrimSpace(rec[l.desc])
	ref := chaseRef(date, desc)
	if l.check >= 0 {
		if n := strings.TrimSpace(rec[l.check]); n != "" {
			ref += "_chk" + n
		}
	}
	return BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   ref,
		Type:        strings.TrimSpace(rec[l.kind]),
	}, nil
}

// chaseRef builds a stable reference such as chase_20250103_GITHUBPROS
// from the date and the first ten alphanumerics of the description.
func chaseRef(date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return "chase_" + date.Format("20060102") + "_" + b.String()
}
