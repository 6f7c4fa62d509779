package accounts

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildTreeBalances(t *testing.T) {
	accts := []model.Account{
		{ID: 1, Key: "1000", Kind: model.KindAsset},
		{ID: 2, Key: "1100", Kind: model.KindAsset, ParentID: 1, IsLeaf: true},
		{ID: 3, Key: "1200", Kind: model.KindAsset, ParentID: 1, IsLeaf: true},
		{ID: 4, Key: "3000", Kind: model.KindEquity, IsLeaf: true},
	}
	details := []model.Detail{
		{ID: 10, AccountID: 2, Debit: dec("100"), Credit: decimal.Zero},
		{ID: 11, AccountID: 4, Debit: decimal.Zero, Credit: dec("100")},
		{ID: 12, AccountID: 3, Debit: dec("40"), Credit: decimal.Zero},
		{ID: 13, AccountID: 2, Debit: decimal.Zero, Credit: dec("40")},
	}

	tree, err := BuildTree(accts, details)
	require.NoError(t, err)

	tests := []struct {
		id   int64
		want string
	}{
		{1, "100"},
		{2, "60"},
		{3, "40"},
		{4, "100"},
	}
	for _, tt := range tests {
		got, err := tree.Balance(tt.id)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(tt.want)), "account %d: got %s want %s", tt.id, got, tt.want)
	}

	local, err := tree.LocalTotal(1)
	require.NoError(t, err)
	assert.True(t, local.IsZero())

	all, err := tree.Details(1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	leaves, err := tree.Leaves(1)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, "1100", leaves[0].Key)

	depth, err := tree.Depth(3)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	assert.Len(t, tree.Roots(), 2)
	assert.Equal(t, 4, tree.Len())

	_, err = tree.Balance(99)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBuildTreeRejectsDanglingParent(t *testing.T) {
	_, err := BuildTree([]model.Account{{ID: 1, Key: "a", ParentID: 7, Kind: model.KindAsset}}, nil)
	assert.ErrorContains(t, err, "parent 7 not found")
}

func TestBuildTreeRejectsCycle(t *testing.T) {
	accts := []model.Account{
		{ID: 1, Key: "root", Kind: model.KindAsset},
		{ID: 2, Key: "a", ParentID: 3, Kind: model.KindAsset},
		{ID: 3, Key: "b", ParentID: 2, Kind: model.KindAsset},
	}
	_, err := BuildTree(accts, nil)
	assert.ErrorContains(t, err, "cycle")
}

func TestBuildTreeRejectsForeignDetail(t *testing.T) {
	_, err := BuildTree([]model.Account{{ID: 1, Key: "a", Kind: model.KindAsset, IsLeaf: true}},
		[]model.Detail{{ID: 1, AccountID: 2}})
	assert.Error(t, err)
}

func TestDeepTreeHasNoDepthLimit(t *testing.T) {
	const depth = 20000
	accts := make([]model.Account, depth)
	for i := range accts {
		accts[i] = model.Account{ID: int64(i + 1), Key: fmt.Sprintf("k%d", i), Kind: model.KindLiability, ParentID: int64(i)}
	}
	accts[depth-1].IsLeaf = true
	details := []model.Detail{{ID: 1, AccountID: depth, Debit: decimal.Zero, Credit: dec("12.34")}}

	tree, err := BuildTree(accts, details)
	require.NoError(t, err)
	got, err := tree.Balance(1)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("12.34")))
}

// randomTree builds a forest of at least three levels with random postings
// on its leaves.
func randomTree(r *rand.Rand) ([]model.Account, []model.Detail) {
	kinds := []model.AccountKind{model.KindAsset, model.KindLiability, model.KindEquity}
	var (
		accts   []model.Account
		details []model.Detail
		nextID  int64
	)

	var grow func(parent int64, kind model.AccountKind, level, maxLevel int)
	grow = func(parent int64, kind model.AccountKind, level, maxLevel int) {
		nextID++
		id := nextID
		leaf := level == maxLevel || (level >= 3 && r.IntN(3) == 0)
		accts = append(accts, model.Account{ID: id, ParentID: parent, Key: fmt.Sprintf("%06d", id), Kind: kind, IsLeaf: leaf})
		if leaf {
			for range r.IntN(5) {
				amount := decimal.New(r.Int64N(100000), -2)
				d := model.Detail{ID: int64(len(details) + 1), AccountID: id, Debit: decimal.Zero, Credit: decimal.Zero}
				if r.IntN(2) == 0 {
					d.Debit = amount
				} else {
					d.Credit = amount
				}
				details = append(details, d)
			}
			return
		}
		for range 1 + r.IntN(3) {
			grow(id, kind, level+1, maxLevel)
		}
	}

	for _, k := range kinds {
		grow(0, k, 1, 3+r.IntN(3))
	}
	return accts, details
}

func TestBalanceAdditivityOnRandomTrees(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))
	for iter := range 50 {
		accts, details := randomTree(r)
		tree, err := BuildTree(accts, details)
		require.NoError(t, err)

		maxDepth := 0
		for _, a := range accts {
			d, err := tree.Depth(a.ID)
			require.NoError(t, err)
			maxDepth = max(maxDepth, d)

			children, err := tree.Children(a.ID)
			require.NoError(t, err)

			want, err := tree.LocalTotal(a.ID)
			require.NoError(t, err)
			for _, c := range children {
				cb, err := tree.Balance(c.ID)
				require.NoError(t, err)
				want = want.Add(cb)
			}
			got, err := tree.Balance(a.ID)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "iteration %d account %s: %s != %s", iter, a.Key, got, want)
		}
		assert.GreaterOrEqual(t, maxDepth, 2, "trees must be at least three levels deep")

		// The root balance is the signed sum of every detail in the subtree.
		for _, root := range tree.Roots() {
			subDetails, err := tree.Details(root.ID)
			require.NoError(t, err)
			sum := decimal.Zero
			for _, d := range subDetails {
				sum = sum.Add(root.Kind.Signed(d.Debit, d.Credit))
			}
			got, err := tree.Balance(root.ID)
			require.NoError(t, err)
			assert.True(t, got.Equal(sum))
		}
	}
}
