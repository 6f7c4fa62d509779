package accounts

import "github.com/cleared-dev/ledger/internal/model"

// DefaultChart returns a small starter chart. Parents come before their
// children so it can be imported in order.
func DefaultChart() []ChartEntry {
	return []ChartEntry{
		{Key: "1000", Description: "Assets", Kind: model.KindAsset},
		{Key: "1100", Description: "Cash", Kind: model.KindAsset, ParentKey: "1000"},
		{Key: "1110", Description: "Checking", Kind: model.KindAsset, ParentKey: "1100", IsLeaf: true},
		{Key: "1120", Description: "Savings", Kind: model.KindAsset, ParentKey: "1100", IsLeaf: true},
		{Key: "1200", Description: "Accounts Receivable", Kind: model.KindAsset, ParentKey: "1000", IsLeaf: true},

		{Key: "2000", Description: "Liabilities", Kind: model.KindLiability},
		{Key: "2100", Description: "Credit Card", Kind: model.KindLiability, ParentKey: "2000", IsLeaf: true},
		{Key: "2200", Description: "Taxes Payable", Kind: model.KindLiability, ParentKey: "2000", IsLeaf: true},

		{Key: "3000", Description: "Equity", Kind: model.KindEquity},
		{Key: "3100", Description: "Owner's Capital", Kind: model.KindEquity, ParentKey: "3000", IsLeaf: true},
		{Key: "3200", Description: "Retained Earnings", Kind: model.KindEquity, ParentKey: "3000", IsLeaf: true},
		{Key: "3300", Description: "Revenue", Kind: model.KindEquity, ParentKey: "3000"},
		{Key: "3310", Description: "Service Revenue", Kind: model.KindEquity, ParentKey: "3300", IsLeaf: true},
		{Key: "3400", Description: "Expenses", Kind: model.KindEquity, ParentKey: "3000"},
		{Key: "3410", Description: "Software", Kind: model.KindEquity, ParentKey: "3400", IsLeaf: true},
		{Key: "3420", Description: "Office Supplies", Kind: model.KindEquity, ParentKey: "3400", IsLeaf: true},
	}
}
