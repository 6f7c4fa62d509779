package templates

import (
	"path/filepath"
	"strings"
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

type fixture struct {
	svc      *Service
	journal  *journal.Service
	accounts *accounts.Service
	store    *store.Store
	company  int64
	cash     model.Account
	revenue  model.Account
	card     model.Account
	rent     model.Account
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := store.Open("sqlite3", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cid, err := st.InsertCompany("Acme")
	require.NoError(t, err)

	acctSvc := accounts.NewService(st, zap.NewNop())
	mk := func(key string, kind model.AccountKind) model.Account {
		a, err := acctSvc.Create(cid, accounts.AccountParams{Key: key, Kind: kind, IsLeaf: true})
		require.NoError(t, err)
		return a
	}

	return fixture{
		svc:      NewService(st, zap.NewNop()),
		journal:  journal.NewService(st, zap.NewNop()),
		accounts: acctSvc,
		store:    st,
		company:  cid,
		cash:     mk("Cash", model.KindAsset),
		revenue:  mk("Revenue", model.KindEquity),
		card:     mk("Card", model.KindLiability),
		rent:     mk("Rent", model.KindEquity),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var jan = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestExpand_DebitAndCreditSides(t *testing.T) {
	cash := model.Account{ID: 1, CompanyID: 1, Key: "Cash", Kind: model.KindAsset, IsLeaf: true}
	revenue := model.Account{ID: 2, CompanyID: 1, Key: "Revenue", Kind: model.KindEquity, IsLeaf: true}
	q := model.QuickTransaction{
		CompanyID: 1, Name: "sale",
		AccountFromID: cash.ID, FromCharge: model.ChargeDebit,
		AccountToID: revenue.ID, ToCharge: model.ChargeCredit,
	}
	require.NoError(t, ValidateQuick(q, cash, revenue))

	from, to, err := Expand(q, dec("50"), jan, "walk-in")
	require.NoError(t, err)
	assert.Equal(t, cash.ID, from.AccountID)
	assert.True(t, from.Debit.Equal(dec("50")))
	assert.True(t, from.Credit.IsZero())
	assert.Equal(t, revenue.ID, to.AccountID)
	assert.True(t, to.Credit.Equal(dec("50")))
	assert.True(t, to.Debit.IsZero())
	assert.Equal(t, "walk-in", from.Notes)
	assert.True(t, from.TransactionDate.Equal(jan))

	legs := []journal.Leg{
		{Account: cash, Debit: from.Debit, Credit: from.Credit},
		{Account: revenue, Debit: to.Debit, Credit: to.Credit},
	}
	assert.NoError(t, journal.Validate(1, legs))
}

func TestExpand_Amount(t *testing.T) {
	q := model.QuickTransaction{FromCharge: model.ChargeDebit, ToCharge: model.ChargeCredit}
	for _, amount := range []string{"0", "-5", "1.234"} {
		_, _, err := Expand(q, dec(amount), jan, "")
		var verr model.ValidationError
		require.ErrorAs(t, err, &verr, amount)
		assert.Equal(t, "amount", verr.Field)
	}
}

func TestValidateQuick(t *testing.T) {
	cash := model.Account{ID: 1, CompanyID: 1, Key: "Cash", Kind: model.KindAsset, IsLeaf: true}
	card := model.Account{ID: 2, CompanyID: 1, Key: "Card", Kind: model.KindLiability, IsLeaf: true}
	group := model.Account{ID: 3, CompanyID: 1, Key: "Assets", Kind: model.KindAsset}
	foreign := model.Account{ID: 4, CompanyID: 2, Key: "Cash", Kind: model.KindAsset, IsLeaf: true}

	base := model.QuickTransaction{CompanyID: 1, Name: "q", AccountFromID: 1, AccountToID: 2}

	tests := []struct {
		name     string
		from, to model.Account
		fc, tc   model.ChargeKind
		check    func(t *testing.T, err error)
	}{
		{"asset debit, liability credit", cash, card, model.ChargeDebit, model.ChargeCredit, func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
		{"both debit", cash, card, model.ChargeDebit, model.ChargeDebit, func(t *testing.T, err error) {
			var e model.BalanceError
			assert.ErrorAs(t, err, &e)
		}},
		{"both credit", cash, card, model.ChargeCredit, model.ChargeCredit, func(t *testing.T, err error) {
			var e model.BalanceError
			assert.ErrorAs(t, err, &e)
		}},
		{"foreign account", foreign, card, model.ChargeDebit, model.ChargeCredit, func(t *testing.T, err error) {
			var e model.CrossCompanyError
			assert.ErrorAs(t, err, &e)
		}},
		{"non-leaf", group, card, model.ChargeDebit, model.ChargeCredit, func(t *testing.T, err error) {
			var e model.ValidationError
			assert.ErrorAs(t, err, &e)
		}},
		{"bad charge", cash, card, 0, model.ChargeCredit, func(t *testing.T, err error) {
			var e model.ValidationError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "from_charge", e.Field)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			q.FromCharge, q.ToCharge = tt.fc, tt.tc
			tt.check(t, ValidateQuick(q, tt.from, tt.to))
		})
	}

	noName := base
	noName.Name = " "
	noName.FromCharge, noName.ToCharge = model.ChargeDebit, model.ChargeCredit
	assert.Error(t, ValidateQuick(noName, cash, card))
}

func TestSubmitQuick(t *testing.T) {
	f := newFixture(t)

	q, err := f.svc.CreateQuick(f.company, model.QuickTransaction{
		Name:          "sale",
		AccountFromID: f.cash.ID, FromCharge: model.ChargeDebit,
		AccountToID: f.revenue.ID, ToCharge: model.ChargeCredit,
	})
	require.NoError(t, err)
	assert.Equal(t, f.company, q.CompanyID)

	txn, err := f.svc.SubmitQuick(f.company, q.ID, dec("50"), jan, "walk-in")
	require.NoError(t, err)
	require.Len(t, txn.Details, 2)

	b, err := f.accounts.Balance(f.company, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, b.Equal(dec("50")))

	// A bad amount posts nothing.
	_, err = f.svc.SubmitQuick(f.company, q.ID, dec("-1"), jan, "")
	assert.Error(t, err)
	txns, err := f.journal.List(f.company)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	byName, err := f.svc.GetQuickByName(f.company, "sale")
	require.NoError(t, err)
	assert.Equal(t, q.ID, byName.ID)

	from, to, err := f.svc.ExpandQuick(f.company, q.ID, dec("7.25"), jan, "")
	require.NoError(t, err)
	assert.True(t, from.Debit.Equal(dec("7.25")))
	assert.True(t, to.Credit.Equal(dec("7.25")))

	require.NoError(t, f.svc.DeleteQuick(f.company, q.ID))
	list, err := f.svc.ListQuick(f.company)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateQuickRejectsUnbalanced(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateQuick(f.company, model.QuickTransaction{
		Name:          "broken",
		AccountFromID: f.cash.ID, FromCharge: model.ChargeDebit,
		AccountToID: f.card.ID, ToCharge: model.ChargeDebit,
	})
	var berr model.BalanceError
	require.ErrorAs(t, err, &berr)

	_, err = f.svc.CreateQuick(f.company, model.QuickTransaction{
		Name:          "missing",
		AccountFromID: 999, FromCharge: model.ChargeDebit,
		AccountToID: f.card.ID, ToCharge: model.ChargeCredit,
	})
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "account_from", verr.Field)

	list, err := f.svc.ListQuick(f.company)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateQuickRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)

	deposit := model.QuickTransaction{
		Name:          "deposit",
		AccountFromID: f.cash.ID, FromCharge: model.ChargeDebit,
		AccountToID: f.revenue.ID, ToCharge: model.ChargeCredit,
	}
	first, err := f.svc.CreateQuick(f.company, deposit)
	require.NoError(t, err)

	deposit.Name = " deposit "
	_, err = f.svc.CreateQuick(f.company, deposit)
	var dup model.UniqueConstraintViolation
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "deposit", dup.Key)

	deposit.Name = strings.Repeat("q", model.MaxNameLength+1)
	_, err = f.svc.CreateQuick(f.company, deposit)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	list, err := f.svc.ListQuick(f.company)
	require.NoError(t, err)
	require.Len(t, list, 1)

	byName, err := f.svc.GetQuickByName(f.company, "deposit")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byName.ID)
}

func TestRecurringLifecycle(t *testing.T) {
	f := newFixture(t)

	txn, err := f.journal.Post(f.company, jan, "monthly rent", []model.Line{
		{AccountID: f.rent.ID, Debit: dec("900"), Credit: decimal.Zero},
		{AccountID: f.cash.ID, Debit: decimal.Zero, Credit: dec("900")},
	})
	require.NoError(t, err)

	rec, err := f.svc.CreateRecurringFromTransaction(f.company, txn.ID, "rent")
	require.NoError(t, err)
	assert.Equal(t, "monthly rent", rec.Notes)
	require.Len(t, rec.Details, 2)

	// Recurring templates never move balances.
	b, err := f.accounts.Balance(f.company, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, b.Equal(dec("-900")))

	notes, lines, err := f.svc.Prefill(f.company, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "monthly rent", notes)
	require.Len(t, lines, 2)
	assert.Zero(t, lines[0].DetailID)

	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	posted, err := f.svc.PostRecurring(f.company, rec.ID, feb)
	require.NoError(t, err)
	assert.True(t, posted.Date.Equal(feb))

	b, err = f.accounts.Balance(f.company, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, b.Equal(dec("-1800")))

	edited, err := f.svc.EditRecurring(f.company, rec.ID, "rent 2024", "raised", []model.Line{
		{AccountID: f.rent.ID, Debit: dec("950"), Credit: decimal.Zero},
		{AccountID: f.card.ID, Debit: decimal.Zero, Credit: dec("950")},
	})
	require.NoError(t, err)
	assert.Equal(t, "rent 2024", edited.Name)

	got, err := f.svc.GetRecurring(f.company, rec.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 2)
	assert.Equal(t, f.card.ID, got.Details[1].AccountID)

	list, err := f.svc.ListRecurring(f.company)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteRecurring(f.company, rec.ID))
	_, err = f.svc.GetRecurring(f.company, rec.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEditRecurringValidatesAtomically(t *testing.T) {
	f := newFixture(t)

	txn, err := f.journal.Post(f.company, jan, "rent", []model.Line{
		{AccountID: f.rent.ID, Debit: dec("900"), Credit: decimal.Zero},
		{AccountID: f.cash.ID, Debit: decimal.Zero, Credit: dec("900")},
	})
	require.NoError(t, err)
	rec, err := f.svc.CreateRecurringFromTransaction(f.company, txn.ID, "rent")
	require.NoError(t, err)

	_, err = f.svc.EditRecurring(f.company, rec.ID, "rent", "", []model.Line{
		{AccountID: f.rent.ID, Debit: dec("900"), Credit: decimal.Zero},
		{AccountID: f.cash.ID, Debit: decimal.Zero, Credit: dec("800")},
	})
	var berr model.BalanceError
	require.ErrorAs(t, err, &berr)

	_, err = f.svc.EditRecurring(f.company, rec.ID, "rent", "", []model.Line{
		{AccountID: f.rent.ID, Debit: dec("900"), Credit: decimal.Zero},
	})
	var ierr model.InsufficientLinesError
	require.ErrorAs(t, err, &ierr)

	got, err := f.svc.GetRecurring(f.company, rec.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 2)
	assert.True(t, got.Details[1].Credit.Equal(dec("900")))

	// A recurring line protects its account from deletion.
	require.NoError(t, f.journal.Delete(f.company, txn.ID))
	err = f.accounts.Delete(f.company, f.cash.ID)
	var perr model.ProtectedDeleteError
	assert.ErrorAs(t, err, &perr)
}
