package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-dnnf/compiler/internal/dimacs"
	"github.com/go-dnnf/compiler/internal/satstate/ginisat"
	"github.com/go-dnnf/compiler/internal/vtree"
)

func TestInsertThenLookupHits(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1, 2}, {-1, -2}}}
	root, err := vtree.Build(cnf, []int{1, 2})
	require.NoError(t, err)
	root.LiveCache = true // root is naturally disabled; force it on for the test

	sat := ginisat.New(cnf)
	c := New(16)

	_, ok := c.Lookup(root, sat)
	assert.False(t, ok)

	c.Insert(root, sat, "value-a")
	v, ok := c.Lookup(root, sat)
	require.True(t, ok)
	assert.Equal(t, "value-a", v)
	assert.Equal(t, 1, c.Hits)
	assert.Equal(t, 1, c.Misses)
}

func TestLookupMissesOnDifferentContext(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 3, Clauses: [][]int{{1, 3}}}
	root, err := vtree.Build(cnf, []int{1, 2, 3})
	require.NoError(t, err)

	var target *vtree.Node
	if root.Left.IsShannonNode() {
		target = root.Left
	} else {
		target = root.Right
	}
	target.LiveCache = true

	sat := ginisat.New(cnf)
	c := New(16)
	c.Insert(target, sat, 42)

	sat.DecideLiteral(1)
	_, ok := c.Lookup(target, sat)
	assert.False(t, ok, "a different assignment to the context variable should miss")
}

func TestLookupSkipsInstantiatedShannonVar(t *testing.T) {
	// Both variables become instantiated by AssertUnitClauses before any
	// decision runs, so the root's Shannon variable is no longer eligible
	// for caching per should_cache.
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1}, {2}}}
	root, err := vtree.Build(cnf, []int{1, 2})
	require.NoError(t, err)
	root.LiveCache = true

	sat := ginisat.New(cnf)
	require.True(t, sat.AssertUnitClauses())

	c := New(16)
	c.Insert(root, sat, "unreachable")
	assert.Equal(t, 0, c.Count, "insert on an instantiated Shannon var must be a no-op")

	_, ok := c.Lookup(root, sat)
	assert.False(t, ok)
}

func TestLookupSkipsNonLiveCache(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1, 2}, {-1, -2}}}
	root, err := vtree.Build(cnf, []int{1, 2})
	require.NoError(t, err)
	require.False(t, root.LiveCache, "root starts with caching disabled")

	sat := ginisat.New(cnf)
	c := New(16)
	c.Insert(root, sat, "unreachable")
	assert.Equal(t, 0, c.Count)
}

func TestDropSubtreeRemovesEntries(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 3, Clauses: [][]int{{1, 3}}}
	root, err := vtree.Build(cnf, []int{1, 2, 3})
	require.NoError(t, err)

	var target *vtree.Node
	if root.Left.IsShannonNode() {
		target = root.Left
	} else {
		target = root.Right
	}
	target.LiveCache = true

	sat := ginisat.New(cnf)
	cc := New(16)
	cc.Insert(target, sat, "cached")
	require.Equal(t, 1, cc.Count)

	cc.DropSubtree(root)
	assert.Equal(t, 0, cc.Count)

	_, ok := cc.Lookup(target, sat)
	assert.False(t, ok)
}

func TestMemoryAccounting(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 3, Clauses: [][]int{{1, 3}}}
	root, err := vtree.Build(cnf, []int{1, 2, 3})
	require.NoError(t, err)

	var target *vtree.Node
	if root.Left.IsShannonNode() {
		target = root.Left
	} else {
		target = root.Right
	}
	target.LiveCache = true

	sat := ginisat.New(cnf)
	cc := New(16)
	assert.Equal(t, 0, cc.Memory)

	cc.Insert(target, sat, "v")
	require.Equal(t, 1, cc.Count)
	assert.Greater(t, cc.Memory, 0)

	cc.DropSubtree(root)
	assert.Equal(t, 0, cc.Memory)
}

func TestDropSubtreeNoopOnLeaf(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}}}
	root, err := vtree.Build(cnf, []int{1})
	require.NoError(t, err)
	assert.True(t, root.IsLeaf())

	cc := New(16)
	cc.DropSubtree(root) // must not panic
}
