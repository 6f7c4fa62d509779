// Package importer turns bank CSV exports into ledger transactions by
// submitting each row through a quick transaction template.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/model"
)

// BankTransaction is one row of a bank export. Positive amounts are money
// in, negative amounts money out.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
	Type        string
}

// Parser converts a bank CSV file into BankTransactions.
type Parser interface {
	Parse(r io.Reader) ([]BankTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	return r
}

// processedDir is where imported files are moved, relative to the import dir.
const processedDir = "processed"

// Scan returns the CSV files directly inside dir. A missing dir is empty.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves dir/fileName to dir/processed/fileName.
func MarkProcessed(dir, fileName string) error {
	dstDir := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(filepath.Join(dir, fileName), filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// QuickPoster submits a quick transaction template with an amount.
type QuickPoster interface {
	SubmitQuick(companyID, quickID int64, amount decimal.Decimal, date time.Time, notes string) (model.Transaction, error)
}

// Result summarizes one Post call.
type Result struct {
	Posted  []model.Transaction
	Skipped int // zero-amount rows
}

// Poster routes bank rows to a deposit and a withdrawal template.
type Poster struct {
	Submitter    QuickPoster
	CompanyID    int64
	DepositID    int64
	WithdrawalID int64
	Logger       *zap.Logger
}

// Post submits every row in order: positive amounts through the deposit
// template, negative ones through the withdrawal template with the absolute
// amount. Each row is its own transaction; Post stops at the first failure
// and reports the rows already posted.
func (p *Poster) Post(txns []BankTransaction) (Result, error) {
	var res Result
	for i, bt := range txns {
		if bt.Amount.IsZero() {
			res.Skipped++
			continue
		}
		quickID := p.DepositID
		if bt.Amount.IsNegative() {
			quickID = p.WithdrawalID
		}
		notes := bt.Description
		if bt.Reference != "" {
			notes = fmt.Sprintf("%s (%s)", bt.Description, bt.Reference)
		}
		txn, err := p.Submitter.SubmitQuick(p.CompanyID, quickID, bt.Amount.Abs(), bt.Date, notes)
		if err != nil {
			return res, fmt.Errorf("bank row %d %s: %w", i+1, bt.Reference, err)
		}
		res.Posted = append(res.Posted, txn)
		if p.Logger != nil {
			p.Logger.Debug("bank row posted", zap.String("reference", bt.Reference), zap.Int64("transaction_id", txn.ID))
		}
	}
	return res, nil
}
