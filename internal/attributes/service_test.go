package attributes

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

func setup(t *testing.T) (*Service, *store.Store, int64, model.Transaction) {
	t.Helper()
	st, err := store.Open("sqlite3", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cid, err := st.InsertCompany("Acme")
	require.NoError(t, err)

	acctSvc := accounts.NewService(st, zap.NewNop())
	cash, err := acctSvc.Create(cid, accounts.AccountParams{Key: "Cash", Kind: model.KindAsset, IsLeaf: true})
	require.NoError(t, err)
	revenue, err := acctSvc.Create(cid, accounts.AccountParams{Key: "Revenue", Kind: model.KindEquity, IsLeaf: true})
	require.NoError(t, err)

	txn, err := journal.NewService(st, zap.NewNop()).Post(cid, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "", []model.Line{
		{AccountID: cash.ID, Debit: decimal.NewFromInt(10), Credit: decimal.Zero},
		{AccountID: revenue.ID, Debit: decimal.Zero, Credit: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)

	return NewService(st, zap.NewNop()), st, cid, txn
}

func TestCreate(t *testing.T) {
	svc, _, cid, _ := setup(t)

	a, err := svc.Create(cid, "region", model.AttributeChoice, []string{"north", " south ", ""})
	require.NoError(t, err)
	assert.Equal(t, "north;south", a.Metadata)
	assert.Equal(t, []string{"north", "south"}, a.Choices())

	_, err = svc.Create(cid, "empty", model.AttributeChoice, nil)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "choices", verr.Field)

	_, err = svc.Create(cid, "", model.AttributeText, nil)
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Create(cid, "bad", model.AttributeKind(42), nil)
	assert.ErrorAs(t, err, &verr)

	list, err := svc.List(cid)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		kind    model.AttributeKind
		meta    string
		in      string
		want    string
		wantErr bool
	}{
		{model.AttributeText, "", " hello ", "hello", false},
		{model.AttributeNumber, "", "12.50", "12.5", false},
		{model.AttributeNumber, "", "twelve", "", true},
		{model.AttributeDate, "", "2024-02-29", "2024-02-29", false},
		{model.AttributeDate, "", "2023-02-29", "", true},
		{model.AttributeChoice, "a;b", "b", "b", false},
		{model.AttributeChoice, "a;b", "c", "", true},
		{model.AttributeArray, "", "x; y ;z", "x;y;z", false},
		{model.AttributeArray, "", "x;;z", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.in, func(t *testing.T) {
			got, err := Normalize(model.Attribute{Name: "f", Kind: tt.kind, Metadata: tt.meta}, tt.in)
			if tt.wantErr {
				var verr model.ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetAndValues(t *testing.T) {
	svc, _, cid, txn := setup(t)

	attr, err := svc.Create(cid, "project", model.AttributeText, nil)
	require.NoError(t, err)

	detailID := txn.Details[0].ID
	require.NoError(t, svc.Set(cid, detailID, attr.ID, "alpha"))
	require.NoError(t, svc.Set(cid, detailID, attr.ID, "beta"))

	values, err := svc.Values(cid, detailID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "beta", values[0].Value)
}

func TestSetRejectsOtherCompany(t *testing.T) {
	svc, st, cid, txn := setup(t)

	other, err := st.InsertCompany("Other")
	require.NoError(t, err)
	attr, err := svc.Create(other, "project", model.AttributeText, nil)
	require.NoError(t, err)

	err = svc.Set(other, txn.Details[0].ID, attr.ID, "alpha")
	var cerr model.CrossCompanyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cid, cerr.AccountCompanyID)

	// The attribute is not visible from the detail's company.
	err = svc.Set(cid, txn.Details[0].ID, attr.ID, "alpha")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Values(other, txn.Details[0].ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
