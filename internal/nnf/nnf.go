// Package nnf implements the NNF node store the compiler driver targets
// when run in compilation mode. It is an external collaborator per spec.md
// §6 ("NNF node store ... assumed to hash-cons") — this is a reference
// implementation sufficient to run the driver end to end and to check the
// testable properties of spec.md §8.
package nnf

import (
	"math"
	"math/big"
)

// Handle is an opaque NNF node reference. Handles compare by identity via
// ordinary Go equality because the Manager hash-conses every node it
// produces: two calls that would build structurally identical nodes return
// the same Handle.
type Handle struct {
	kind kind
	a, b int // literals: a is the signed literal; and/or nodes: a is the node id (or nodes also keep the decision var in b)
}

type kind int

const (
	kindZero kind = iota
	kindOne
	kindLiteral
	kindAnd
	kindOr // deterministic decision node: b is the decision var, children in orDefs
)

type orNode struct {
	v        int
	pos, neg Handle
}

// Manager hash-conses NNF nodes and tracks the designated root.
type Manager struct {
	ZERO Handle
	ONE  Handle

	ands map[[2]Handle]Handle
	ors  map[orKey]Handle
	lits map[int]Handle

	nextID  int
	andDefs map[Handle][2]Handle
	orDefs  map[Handle]orNode

	root Handle
}

type orKey struct {
	v        int
	pos, neg Handle
}

// NewManager constructs an empty NNF manager.
func NewManager() *Manager {
	m := &Manager{
		ands:    make(map[[2]Handle]Handle),
		ors:     make(map[orKey]Handle),
		lits:    make(map[int]Handle),
		andDefs: make(map[Handle][2]Handle),
		orDefs:  make(map[Handle]orNode),
	}
	m.ZERO = Handle{kind: kindZero}
	m.ONE = Handle{kind: kindOne}
	return m
}

// LiteralToNode returns the (hash-consed) node representing a single literal.
func (m *Manager) LiteralToNode(lit int) Handle {
	if h, ok := m.lits[lit]; ok {
		return h
	}
	h := Handle{kind: kindLiteral, a: lit}
	m.lits[lit] = h
	return h
}

// Conjoin returns the result of conjoining a and b.
func (m *Manager) Conjoin(a, b Handle) Handle {
	if a == m.ZERO || b == m.ZERO {
		return m.ZERO
	}
	if a == m.ONE {
		return b
	}
	if b == m.ONE {
		return a
	}
	key := [2]Handle{a, b}
	if h, ok := m.ands[key]; ok {
		return h
	}
	id := m.nextID
	m.nextID++
	h := Handle{kind: kindAnd, a: id}
	m.ands[key] = h
	m.andDefs[h] = [2]Handle{a, b}
	return h
}

// Disjoin returns the result of disjoining two nodes conditioned on
// opposite literals of var, per spec.md §6: one of node1/node2 may be ZERO
// or ONE, or node1 = x.f and node2 = ~x.g for var's literal x.
func (m *Manager) Disjoin(v int, node1, node2 Handle) Handle {
	if node1 == m.ONE || node2 == m.ONE {
		return m.ONE
	}
	if node1 == m.ZERO {
		return node2
	}
	if node2 == m.ZERO {
		return node1
	}
	key := orKey{v: v, pos: node1, neg: node2}
	if h, ok := m.ors[key]; ok {
		return h
	}
	id := m.nextID
	m.nextID++
	h := Handle{kind: kindOr, a: id, b: v}
	m.ors[key] = h
	m.orDefs[h] = orNode{v: v, pos: node1, neg: node2}
	return h
}

// SetRoot designates the manager's root node.
func (m *Manager) SetRoot(h Handle) { m.root = h }

// Root returns the manager's root node.
func (m *Manager) Root() Handle { return m.root }

// IsDecomposable reports whether every conjunction reachable from root has
// children whose variable sets are disjoint (spec.md §8 property 2).
func (m *Manager) IsDecomposable(root Handle) bool {
	ok := true
	memo := make(map[Handle]map[int]bool)
	var vars func(h Handle) map[int]bool
	vars = func(h Handle) map[int]bool {
		if v, done := memo[h]; done {
			return v
		}
		result := make(map[int]bool)
		memo[h] = result
		switch h.kind {
		case kindLiteral:
			v := h.a
			if v < 0 {
				v = -v
			}
			result[v] = true
		case kindAnd:
			children := m.andDefs[h]
			lv := vars(children[0])
			rv := vars(children[1])
			for v := range lv {
				if rv[v] {
					ok = false
				}
				result[v] = true
			}
			for v := range rv {
				result[v] = true
			}
		case kindOr:
			def := m.orDefs[h]
			for v := range vars(def.pos) {
				result[v] = true
			}
			for v := range vars(def.neg) {
				result[v] = true
			}
		}
		return result
	}
	vars(root)
	return ok
}

// IsDeterministic reports whether every disjunction reachable from root has
// mutually inconsistent children (spec.md §8 property 3): by construction
// every Disjoin call pairs a node conditioned on +x with one conditioned on
// -x, so this checks that invariant was respected rather than re-deriving
// model sets.
func (m *Manager) IsDeterministic(root Handle) bool {
	ok := true
	visited := make(map[Handle]bool)
	// conditionedOn reports whether child is lit itself or a conjunction
	// with lit as one of its two children.
	conditionedOn := func(child Handle, lit int) bool {
		litNode := Handle{kind: kindLiteral, a: lit}
		if child == litNode {
			return true
		}
		if child.kind == kindAnd {
			c := m.andDefs[child]
			return c[0] == litNode || c[1] == litNode
		}
		return false
	}
	var walk func(h Handle)
	walk = func(h Handle) {
		if visited[h] {
			return
		}
		visited[h] = true
		switch h.kind {
		case kindAnd:
			children := m.andDefs[h]
			walk(children[0])
			walk(children[1])
		case kindOr:
			def := m.orDefs[h]
			if def.v == 0 || !conditionedOn(def.pos, def.v) || !conditionedOn(def.neg, -def.v) {
				ok = false
			}
			walk(def.pos)
			walk(def.neg)
		}
	}
	walk(root)
	return ok
}

// CountModels returns the unweighted model count of the NNF rooted at root
// over varCount variables, used to cross-check the driver's own counting
// path against compilation (spec.md §8 property 1).
//
// Each node's "local" count is its model count restricted to the variables
// it actually mentions; decomposability (guaranteed by construction and
// independently checked by IsDecomposable) lets conjunction combine local
// counts by straight multiplication, since a conjunction's children's
// variable sets are disjoint and together span it. A disjunction's two
// children are not required to mention the same variables (the driver's
// var2nnf renders an irrelevant variable as ONE rather than branching on
// it), so disjunction is not smooth in general: before adding, each child's
// count is scaled up by 2^k, where k is the number of variables in the OR
// node's combined scope that the child itself doesn't mention, matching
// miniC2D's NNF model counter. Variables the NNF never mentions anywhere
// are free and contribute one further multiplying factor at the end.
func (m *Manager) CountModels(root Handle, varCount int) *big.Float {
	varMemo := make(map[Handle]map[int]bool)
	var vars func(h Handle) map[int]bool
	vars = func(h Handle) map[int]bool {
		if v, ok := varMemo[h]; ok {
			return v
		}
		result := make(map[int]bool)
		varMemo[h] = result
		switch h.kind {
		case kindLiteral:
			v := h.a
			if v < 0 {
				v = -v
			}
			result[v] = true
		case kindAnd:
			c := m.andDefs[h]
			for v := range vars(c[0]) {
				result[v] = true
			}
			for v := range vars(c[1]) {
				result[v] = true
			}
		case kindOr:
			def := m.orDefs[h]
			result[def.v] = true
			for v := range vars(def.pos) {
				result[v] = true
			}
			for v := range vars(def.neg) {
				result[v] = true
			}
		}
		return result
	}

	memo := make(map[Handle]*big.Float)
	var count func(h Handle) *big.Float
	count = func(h Handle) *big.Float {
		if v, ok := memo[h]; ok {
			return v
		}
		var result *big.Float
		switch h.kind {
		case kindZero:
			result = big.NewFloat(0)
		case kindOne:
			result = big.NewFloat(1)
		case kindLiteral:
			result = big.NewFloat(1)
		case kindAnd:
			c := m.andDefs[h]
			result = new(big.Float).Mul(count(c[0]), count(c[1]))
		case kindOr:
			def := m.orDefs[h]
			posVars := vars(def.pos)
			negVars := vars(def.neg)
			scopeSize := len(posVars)
			for v := range negVars {
				if !posVars[v] {
					scopeSize++
				}
			}
			posCount := smooth(count(def.pos), scopeSize-len(posVars))
			negCount := smooth(count(def.neg), scopeSize-len(negVars))
			result = new(big.Float).Add(posCount, negCount)
		default:
			result = big.NewFloat(0)
		}
		memo[h] = result
		return result
	}

	local := count(root)
	free := varCount - len(vars(root))
	if root == m.ZERO {
		free = 0
	}
	if free <= 0 {
		return local
	}
	return local.Mul(local, big.NewFloat(math.Pow(2, float64(free))))
}

// smooth scales a disjunct's local count up by 2^missing to account for
// variables present in the enclosing OR node's scope but absent from this
// particular child.
func smooth(count *big.Float, missing int) *big.Float {
	if missing <= 0 {
		return count
	}
	return new(big.Float).Mul(count, big.NewFloat(math.Pow(2, float64(missing))))
}
