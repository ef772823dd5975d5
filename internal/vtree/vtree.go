// Package vtree builds the immutable binary tree over CNF variables that
// drives knowledge compilation. The tree structure itself, and the
// per-node context-clause bookkeeping, is specified by spec.md §3; vtree
// construction heuristics proper (hypergraph partitioning, elimination
// orders) are out of the core's scope, so Build accepts a caller-supplied
// variable order and lays it out as a balanced binary tree.
package vtree

import (
	"sort"

	"github.com/go-dnnf/compiler/internal/dimacs"
)

// Node is an immutable vtree node. Leaves have Left == Right == nil and a
// non-zero Var. Internal nodes have both children set.
type Node struct {
	id int

	Parent *Node
	Left   *Node
	Right  *Node

	// Position is the node's 0-based inorder position, used as the
	// component key's hash seed (spec.md §4.1).
	Position int

	// Var is the associated CNF variable, valid only for leaves.
	Var int

	// ContextClauses is the fixed-order list of clause indices (into the
	// originating dimacs.CNF.Clauses) that straddle this node: they
	// mention variables both inside and outside its subtree.
	ContextClauses []int

	// ContextInVars is the fixed-order list of variables of the context
	// clauses that lie strictly inside this node's subtree.
	ContextInVars []int

	// CachedSize is |ContextClauses| + 2*|ContextInVars|, in bits.
	CachedSize int

	// LiveCache gates cache eligibility together with the Shannon-node
	// test; see should-cache discussion in internal/cache.
	LiveCache bool

	vars map[int]struct{} // variables in this subtree, used only during Build
}

// ID returns a small dense identifier for the node, used by internal/cache
// to key per-node scratch state without storing it on Node itself.
func (n *Node) ID() int { return n.id }

// IsLeaf reports whether n is a variable leaf.
func (n *Node) IsLeaf() bool { return n.Left == nil }

// IsShannonNode reports whether n is internal with a leaf left child.
func (n *Node) IsShannonNode() bool { return n.Left != nil && n.Left.IsLeaf() }

// ShannonVar returns the decision variable of a Shannon node.
func (n *Node) ShannonVar() int { return n.Left.Var }

// KeySizeBytes returns the number of bytes needed to hold CachedSize bits.
func (n *Node) KeySizeBytes() int {
	if n.CachedSize == 0 {
		return 0
	}
	return (n.CachedSize + 7) / 8
}

// Build constructs a vtree over order (the CNF variables in the order they
// should be laid out) and computes context-clause/context-variable sets
// from cnf's input clauses.
func Build(cnf *dimacs.CNF, order []int) (*Node, error) {
	leaves := make([]*Node, len(order))
	nextID := 0
	for i, v := range order {
		leaves[i] = &Node{id: nextID, Var: v, vars: map[int]struct{}{v: {}}}
		nextID++
	}

	root := buildBalanced(leaves, &nextID)
	assignPositions(root)
	computeContexts(root, cnf)
	assignLiveCache(root)
	return root, nil
}

// buildBalanced recursively splits leaves in half, producing a tree whose
// shape does not depend on clause structure (construction heuristics are
// out of scope; this is a single reasonable default, see DESIGN.md).
func buildBalanced(leaves []*Node, nextID *int) *Node {
	if len(leaves) == 1 {
		return leaves[0]
	}
	mid := len(leaves) / 2
	left := buildBalanced(leaves[:mid], nextID)
	right := buildBalanced(leaves[mid:], nextID)

	vars := make(map[int]struct{}, len(left.vars)+len(right.vars))
	for v := range left.vars {
		vars[v] = struct{}{}
	}
	for v := range right.vars {
		vars[v] = struct{}{}
	}

	node := &Node{id: *nextID, Left: left, Right: right, vars: vars}
	*nextID++
	left.Parent = node
	right.Parent = node
	return node
}

// assignPositions walks the tree inorder, numbering nodes from 0.
func assignPositions(root *Node) {
	pos := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		walk(n.Left)
		n.Position = pos
		pos++
		walk(n.Right)
	}
	walk(root)
}

// assignLiveCache resolves the open question left by spec.md §9: live_cache
// is true for every Shannon node except the root and the root's immediate
// children, where context sets are typically trivial. See DESIGN.md.
func assignLiveCache(n *Node) {
	if n == nil || n.IsLeaf() {
		return
	}
	nearRoot := n.Parent == nil || n.Parent.Parent == nil
	if n.IsShannonNode() {
		n.LiveCache = !nearRoot
	} else {
		n.LiveCache = true
	}
	assignLiveCache(n.Left)
	assignLiveCache(n.Right)
}

// computeContexts populates ContextClauses/ContextInVars for every internal
// node, per spec.md §3: a clause straddles node v when it has variables
// both inside and outside v's subtree. Enumeration order is: clauses are
// processed in input order; for each clause, its straddled nodes are
// visited in a fixed pre-order walk down from the clause's LCA.
func computeContexts(root *Node, cnf *dimacs.CNF) {
	for clauseIdx, clause := range cnf.Clauses {
		varSet := make(map[int]struct{}, len(clause))
		for _, lit := range clause {
			v := lit
			if v < 0 {
				v = -v
			}
			varSet[v] = struct{}{}
		}
		lca := findLCA(root, varSet)
		if lca == nil {
			continue
		}
		addStraddles(lca.Left, varSet, clauseIdx)
		addStraddles(lca.Right, varSet, clauseIdx)
	}
}

// findLCA returns the smallest subtree containing every variable in vars.
func findLCA(n *Node, vars map[int]struct{}) *Node {
	current := n
	for {
		if current.IsLeaf() {
			return current
		}
		if containsAll(current.Left.vars, vars) {
			current = current.Left
			continue
		}
		if containsAll(current.Right.vars, vars) {
			current = current.Right
			continue
		}
		return current
	}
}

func containsAll(set, subset map[int]struct{}) bool {
	for v := range subset {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// addStraddles walks the subtree rooted at n (a strict descendant of a
// clause's LCA), recording the clause at every node whose subtree contains
// at least one of the clause's variables.
func addStraddles(n *Node, clauseVars map[int]struct{}, clauseIdx int) {
	if n == nil {
		return
	}
	var inside []int
	for v := range n.vars {
		if _, ok := clauseVars[v]; ok {
			inside = append(inside, v)
		}
	}
	if len(inside) == 0 {
		return
	}
	sort.Ints(inside)

	n.ContextClauses = append(n.ContextClauses, clauseIdx)
	seen := make(map[int]struct{}, len(n.ContextInVars))
	for _, v := range n.ContextInVars {
		seen[v] = struct{}{}
	}
	for _, v := range inside {
		if _, ok := seen[v]; !ok {
			n.ContextInVars = append(n.ContextInVars, v)
			seen[v] = struct{}{}
		}
	}
	n.CachedSize = len(n.ContextClauses) + 2*len(n.ContextInVars)

	if !n.IsLeaf() {
		addStraddles(n.Left, clauseVars, clauseIdx)
		addStraddles(n.Right, clauseVars, clauseIdx)
	}
}
