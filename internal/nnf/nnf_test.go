package nnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConjoinIdentities(t *testing.T) {
	m := NewManager()
	a := m.LiteralToNode(1)
	assert.Equal(t, m.ZERO, m.Conjoin(a, m.ZERO))
	assert.Equal(t, a, m.Conjoin(a, m.ONE))
	assert.Equal(t, a, m.Conjoin(m.ONE, a))
}

func TestHashConsing(t *testing.T) {
	m := NewManager()
	a1 := m.LiteralToNode(1)
	a2 := m.LiteralToNode(1)
	assert.Equal(t, a1, a2)

	b := m.LiteralToNode(2)
	c1 := m.Conjoin(a1, b)
	c2 := m.Conjoin(a1, b)
	assert.Equal(t, c1, c2)
}

func TestDecomposableConjunction(t *testing.T) {
	m := NewManager()
	root := m.Conjoin(m.LiteralToNode(1), m.LiteralToNode(2))
	assert.True(t, m.IsDecomposable(root))
}

func TestNonDecomposableConjunction(t *testing.T) {
	m := NewManager()
	root := m.Conjoin(m.LiteralToNode(1), m.LiteralToNode(1))
	// A shared-variable conjunction built from two literals of the same
	// variable with different polarity.
	bad := m.Conjoin(m.LiteralToNode(1), m.LiteralToNode(-1))
	_ = root
	assert.False(t, m.IsDecomposable(bad))
}

func TestDeterministicDisjunction(t *testing.T) {
	m := NewManager()
	pos := m.Conjoin(m.LiteralToNode(1), m.LiteralToNode(2))
	neg := m.Conjoin(m.LiteralToNode(-1), m.LiteralToNode(-2))
	root := m.Disjoin(1, pos, neg)
	assert.True(t, m.IsDeterministic(root))
	assert.True(t, m.IsDecomposable(root))
}

func TestCountModelsIndependentConjunction(t *testing.T) {
	m := NewManager()
	root := m.Conjoin(m.LiteralToNode(1), m.LiteralToNode(2))
	count := m.CountModels(root, 2)
	f, _ := count.Float64()
	assert.InDelta(t, 1.0, f, 1e-9)
}

func TestCountModelsFreeVariable(t *testing.T) {
	m := NewManager()
	root := m.LiteralToNode(1)
	count := m.CountModels(root, 2)
	f, _ := count.Float64()
	assert.InDelta(t, 2.0, f, 1e-9) // x2 is free: 2 extensions
}

func TestCountModelsDecision(t *testing.T) {
	m := NewManager()
	pos := m.Conjoin(m.LiteralToNode(1), m.LiteralToNode(-2))
	neg := m.Conjoin(m.LiteralToNode(-1), m.LiteralToNode(2))
	root := m.Disjoin(1, pos, neg)
	count := m.CountModels(root, 2)
	f, _ := count.Float64()
	assert.InDelta(t, 2.0, f, 1e-9)
}
