package journal

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
)

const company = 1

var (
	cash      = model.Account{ID: 1, CompanyID: company, Key: "1000", Kind: model.KindAsset, IsLeaf: true}
	bank      = model.Account{ID: 2, CompanyID: company, Key: "1100", Kind: model.KindAsset, IsLeaf: true}
	card      = model.Account{ID: 3, CompanyID: company, Key: "2000", Kind: model.KindLiability, IsLeaf: true}
	revenue   = model.Account{ID: 4, CompanyID: company, Key: "3000", Kind: model.KindEquity, IsLeaf: true}
	assets    = model.Account{ID: 5, CompanyID: company, Key: "0100", Kind: model.KindAsset}
	elsewhere = model.Account{ID: 6, CompanyID: 2, Key: "1000", Kind: model.KindAsset, IsLeaf: true}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debit(a model.Account, amount string) Leg {
	return Leg{Account: a, Debit: dec(amount), Credit: decimal.Zero}
}

func credit(a model.Account, amount string) Leg {
	return Leg{Account: a, Debit: decimal.Zero, Credit: dec(amount)}
}

func TestValidate_Balanced(t *testing.T) {
	legs := []Leg{debit(cash, "100"), credit(revenue, "100")}
	assert.NoError(t, Validate(company, legs))
}

func TestValidate_MultiLegBalanced(t *testing.T) {
	// Buy equipment: half paid in cash, half on the card.
	legs := []Leg{debit(bank, "500"), credit(cash, "250"), credit(card, "250")}
	assert.NoError(t, Validate(company, legs))
}

func TestValidate_Unbalanced(t *testing.T) {
	err := Validate(company, []Leg{debit(cash, "100"), credit(revenue, "90")})

	var berr model.BalanceError
	require.ErrorAs(t, err, &berr)
	assert.True(t, berr.Asset.Equal(dec("100")))
	assert.True(t, berr.Liability.IsZero())
	assert.True(t, berr.Equity.Equal(dec("90")))
	assert.Contains(t, err.Error(), "ASSETS(100.00)")
}

func TestValidate_InsufficientLines(t *testing.T) {
	for _, legs := range [][]Leg{nil, {debit(cash, "0")}} {
		var ierr model.InsufficientLinesError
		require.ErrorAs(t, Validate(company, legs), &ierr)
		assert.Equal(t, len(legs), ierr.Count)
	}
}

func TestValidate_BothDebitAndCredit(t *testing.T) {
	both := Leg{Account: cash, Debit: dec("10"), Credit: dec("10")}
	err := Validate(company, []Leg{debit(revenue, "0"), both})

	var serr model.DetailShapeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Index)
	assert.Contains(t, err.Error(), "line #2")
}

func TestValidate_ZeroZeroLineAllowed(t *testing.T) {
	legs := []Leg{debit(cash, "100"), credit(revenue, "100"), debit(bank, "0")}
	assert.NoError(t, Validate(company, legs))
}

func TestValidate_ShapeChecks(t *testing.T) {
	tests := []struct {
		name  string
		leg   Leg
		field string
	}{
		{"negative debit", debit(cash, "-1"), "debit"},
		{"negative credit", credit(cash, "-1"), "credit"},
		{"three decimals", debit(cash, "1.005"), "debit"},
		{"eleven integer digits", credit(cash, "10000000000"), "credit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckShape([]Leg{credit(revenue, "1"), tt.leg})
			var verr model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 1, verr.Index)
		})
	}

	assert.NoError(t, CheckShape([]Leg{debit(cash, "9999999999.99")}))
}

func TestValidate_CrossCompany(t *testing.T) {
	err := Validate(company, []Leg{debit(elsewhere, "5"), credit(revenue, "5")})

	var cerr model.CrossCompanyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, cerr.Index)
	assert.Equal(t, int64(2), cerr.AccountCompanyID)
}

func TestValidate_CrossCompanyBeforeBalance(t *testing.T) {
	err := Validate(company, []Leg{debit(cash, "5"), credit(elsewhere, "1")})
	var cerr model.CrossCompanyError
	assert.ErrorAs(t, err, &cerr)
}

func TestValidate_ShapeBeforeBalance(t *testing.T) {
	both := Leg{Account: cash, Debit: dec("3"), Credit: dec("1")}
	err := Validate(company, []Leg{both, credit(revenue, "100")})
	var serr model.DetailShapeError
	assert.ErrorAs(t, err, &serr)
}

func TestValidate_NonLeaf(t *testing.T) {
	err := Validate(company, []Leg{debit(assets, "5"), credit(revenue, "5")})
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "account", verr.Field)
}

func TestTotals(t *testing.T) {
	asset, liability, equity := Totals([]Leg{
		debit(cash, "100"),
		credit(bank, "40"),
		credit(card, "25"),
		debit(card, "5"),
		credit(revenue, "35"),
	})
	assert.True(t, asset.Equal(dec("60")))
	assert.True(t, liability.Equal(dec("20")))
	assert.True(t, equity.Equal(dec("35")))
}

// TestBalanceClosure generates random line sets and checks that the
// validator accepts exactly those whose signed sum is zero.
func TestBalanceClosure(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	accts := []model.Account{cash, bank, card, revenue}

	randomLeg := func() Leg {
		a := accts[r.IntN(len(accts))]
		amount := decimal.New(r.Int64N(1000000), -2)
		if r.IntN(2) == 0 {
			return Leg{Account: a, Debit: amount, Credit: decimal.Zero}
		}
		return Leg{Account: a, Debit: decimal.Zero, Credit: amount}
	}

	for range 500 {
		n := 2 + r.IntN(6)
		legs := make([]Leg, n)
		for i := range legs {
			legs[i] = randomLeg()
		}

		// Half the time, close the set with a balancing line.
		if r.IntN(2) == 0 {
			debits, credits := decimal.Zero, decimal.Zero
			for _, l := range legs {
				debits = debits.Add(l.Debit)
				credits = credits.Add(l.Credit)
			}
			diff := debits.Sub(credits)
			closer := Leg{Account: accts[r.IntN(len(accts))], Debit: decimal.Zero, Credit: decimal.Zero}
			if diff.IsPositive() {
				closer.Credit = diff
			} else {
				closer.Debit = diff.Neg()
			}
			legs = append(legs, closer)
		}

		debits, credits := decimal.Zero, decimal.Zero
		for _, l := range legs {
			debits = debits.Add(l.Debit)
			credits = credits.Add(l.Credit)
		}

		err := Validate(company, legs)
		if debits.Equal(credits) {
			assert.NoError(t, err)
		} else {
			var berr model.BalanceError
			assert.ErrorAs(t, err, &berr)
		}
	}
}

// TestExclusivity checks that a line with both sides set is rejected no
// matter how the rest of the set balances.
func TestExclusivity(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 200 {
		d := decimal.New(1+r.Int64N(10000), -2)
		c := decimal.New(1+r.Int64N(10000), -2)
		bad := Leg{Account: cash, Debit: d, Credit: c}
		legs := []Leg{bad, debit(bank, c.String()), credit(revenue, d.String())}
		legs[0], legs[1] = legs[1], legs[0]

		var serr model.DetailShapeError
		require.ErrorAs(t, Validate(company, legs), &serr)
		assert.Equal(t, 1, serr.Index)
	}
}
