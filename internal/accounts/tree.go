package accounts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// Tree is the in-memory account forest of one company. Nodes live in a flat
// slice and refer to each other by index; balances are folded once when the
// tree is built.
type Tree struct {
	nodes []node
	index map[int64]int
	roots []int
}

type node struct {
	account  model.Account
	parent   int // -1 for roots
	children []int
	details  []model.Detail
	depth    int
	local    decimal.Decimal
	balance  decimal.Decimal
}

// BuildTree links accounts into a forest, attaches details to the accounts
// they post to and computes every balance. Accounts should be ordered by key
// so children come out in key order.
func BuildTree(accounts []model.Account, details []model.Detail) (*Tree, error) {
	t := &Tree{
		nodes: make([]node, len(accounts)),
		index: make(map[int64]int, len(accounts)),
	}
	for i, a := range accounts {
		if _, dup := t.index[a.ID]; dup {
			return nil, fmt.Errorf("duplicate account id %d", a.ID)
		}
		t.index[a.ID] = i
		t.nodes[i] = node{account: a, parent: -1}
	}

	for i := range t.nodes {
		pid := t.nodes[i].account.ParentID
		if pid == 0 {
			t.roots = append(t.roots, i)
			continue
		}
		p, ok := t.index[pid]
		if !ok {
			return nil, fmt.Errorf("account %q: parent %d not found", t.nodes[i].account.Key, pid)
		}
		t.nodes[i].parent = p
		t.nodes[p].children = append(t.nodes[p].children, i)
	}

	for _, d := range details {
		i, ok := t.index[d.AccountID]
		if !ok {
			return nil, fmt.Errorf("detail %d: account %d not in tree", d.ID, d.AccountID)
		}
		t.nodes[i].details = append(t.nodes[i].details, d)
	}

	if err := t.fold(); err != nil {
		return nil, err
	}
	return t, nil
}

// fold walks every root with an explicit stack. Children are finished before
// their parent, so each balance is computed exactly once. Nodes never reached
// from a root sit on a parent cycle.
func (t *Tree) fold() error {
	type frame struct {
		idx      int
		expanded bool
	}

	visited := 0
	stack := make([]frame, 0, len(t.nodes))
	for _, r := range t.roots {
		stack = append(stack, frame{idx: r})
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := &t.nodes[top.idx]

			if top.expanded {
				n.balance = n.local
				for _, c := range n.children {
					n.balance = n.balance.Add(t.nodes[c].balance)
				}
				continue
			}

			visited++
			if n.parent >= 0 {
				n.depth = t.nodes[n.parent].depth + 1
			}
			n.local = decimal.Zero
			for _, d := range n.details {
				n.local = n.local.Add(n.account.Kind.Signed(d.Debit, d.Credit))
			}
			stack = append(stack, frame{idx: top.idx, expanded: true})
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, frame{idx: n.children[i]})
			}
		}
	}

	if visited != len(t.nodes) {
		for i := range t.nodes {
			if t.nodes[i].depth == 0 && t.nodes[i].parent >= 0 {
				return fmt.Errorf("account %q is part of a parent cycle", t.nodes[i].account.Key)
			}
		}
		return fmt.Errorf("account tree has a parent cycle")
	}
	return nil
}

func (t *Tree) lookup(id int64) (int, error) {
	i, ok := t.index[id]
	if !ok {
		return 0, fmt.Errorf("account %d: %w", id, model.ErrNotFound)
	}
	return i, nil
}

// Len returns the number of accounts in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Account returns the account with the given ID.
func (t *Tree) Account(id int64) (model.Account, bool) {
	i, ok := t.index[id]
	if !ok {
		return model.Account{}, false
	}
	return t.nodes[i].account, true
}

// Balance returns LocalTotal(id) plus the balances of its children.
func (t *Tree) Balance(id int64) (decimal.Decimal, error) {
	i, err := t.lookup(id)
	if err != nil {
		return decimal.Zero, err
	}
	return t.nodes[i].balance, nil
}

// LocalTotal sums the account's own details with its kind's sign. Non-leaf
// accounts normally have no details and total zero.
func (t *Tree) LocalTotal(id int64) (decimal.Decimal, error) {
	i, err := t.lookup(id)
	if err != nil {
		return decimal.Zero, err
	}
	return t.nodes[i].local, nil
}

// Depth returns the number of ancestors of the account.
func (t *Tree) Depth(id int64) (int, error) {
	i, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return t.nodes[i].depth, nil
}

// Roots returns the top-level accounts.
func (t *Tree) Roots() []model.Account {
	return t.collect(t.roots)
}

// Children returns the direct children of an account.
func (t *Tree) Children(id int64) ([]model.Account, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.collect(t.nodes[i].children), nil
}

// Subtree returns the account and all of its descendants in pre-order.
func (t *Tree) Subtree(id int64) ([]model.Account, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.collect(t.preorder(i)), nil
}

// Leaves returns the leaf accounts of the subtree rooted at id.
func (t *Tree) Leaves(id int64) ([]model.Account, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	var leaves []model.Account
	for _, j := range t.preorder(i) {
		if t.nodes[j].account.IsLeaf {
			leaves = append(leaves, t.nodes[j].account)
		}
	}
	return leaves, nil
}

// Details returns every detail posted anywhere in the subtree rooted at id.
// A detail appears once even if it were attached twice.
func (t *Tree) Details(id int64) ([]model.Detail, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	var out []model.Detail
	for _, j := range t.preorder(i) {
		for _, d := range t.nodes[j].details {
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			out = append(out, d)
		}
	}
	return out, nil
}

// Walk visits every account in pre-order with its depth and balance.
func (t *Tree) Walk(fn func(a model.Account, depth int, balance decimal.Decimal)) {
	for _, r := range t.roots {
		for _, i := range t.preorder(r) {
			n := t.nodes[i]
			fn(n.account, n.depth, n.balance)
		}
	}
}

func (t *Tree) preorder(start int) []int {
	var out []int
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, i)
		children := t.nodes[i].children
		for c := len(children) - 1; c >= 0; c-- {
			stack = append(stack, children[c])
		}
	}
	return out
}

func (t *Tree) collect(idx []int) []model.Account {
	out := make([]model.Account, len(idx))
	for k, i := range idx {
		out[k] = t.nodes[i].account
	}
	return out
}
