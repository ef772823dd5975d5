package ginisat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-dnnf/compiler/internal/dimacs"
	"github.com/go-dnnf/compiler/internal/satstate"
)

func TestAssertUnitClausesSatisfiable(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1}, {2}}}
	s := New(cnf)
	require.True(t, s.AssertUnitClauses())
	assert.True(t, s.IsInstantiated(1))
	assert.True(t, s.IsImplied(1))
	assert.True(t, s.IsImplied(2))
}

func TestAssertUnitClausesContradiction(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}, {-1}}}
	s := New(cnf)
	assert.False(t, s.AssertUnitClauses())
}

func TestUndoAssertUnitClauses(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}}}
	s := New(cnf)
	require.True(t, s.AssertUnitClauses())
	assert.True(t, s.IsInstantiated(1))
	s.UndoAssertUnitClauses()
	assert.False(t, s.IsInstantiated(1))
}

func TestDecideLiteralNoConflict(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1, 2}}}
	s := New(cnf)
	clause := s.DecideLiteral(1)
	assert.Nil(t, clause)
	assert.Equal(t, 1, s.DecisionLevel())
	assert.True(t, s.IsImplied(1))

	s.UndoDecideLiteral()
	assert.Equal(t, 0, s.DecisionLevel())
	assert.False(t, s.IsInstantiated(1))
}

func TestDecideLiteralConflict(t *testing.T) {
	// x1 -> x2 (clause -1 2), and x2 is forbidden (clause -2): deciding
	// x1 true should force x2 true and then conflict with -2.
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{-1, 2}, {-2}}}
	s := New(cnf)
	require.True(t, s.AssertUnitClauses())
	clause := s.DecideLiteral(1)
	require.NotNil(t, clause)
	assert.Contains(t, clause.Literals, -1)
	assert.Equal(t, 0, clause.AssertionLevel)

	s.UndoDecideLiteral()
	assert.Equal(t, 0, s.DecisionLevel())
}

func TestIsSubsumedAndIrrelevant(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1, 2}, {-1}}}
	s := New(cnf)
	require.True(t, s.AssertUnitClauses())
	assert.True(t, s.IsSubsumed(0))
	assert.True(t, s.IsIrrelevant(1))
}

func TestLiteralWeightDefault(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}}}
	s := New(cnf)
	assert.Equal(t, 1.0, s.LiteralWeight(1))
}

func TestLiteralWeightFromCNF(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}}, Weights: map[int]float64{1: 0.3, -1: 0.7}}
	s := New(cnf)
	assert.Equal(t, 0.3, s.LiteralWeight(1))
	assert.Equal(t, 0.7, s.LiteralWeight(-1))
}

func TestAssertClauseNoConflict(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1, 2}}}
	s := New(cnf)
	require.True(t, s.AssertUnitClauses())

	clause := s.AssertClause(&satstate.Clause{Literals: []int{-1}})
	assert.Nil(t, clause)
	assert.True(t, s.IsImplied(2))
}

func TestAssertClauseConflict(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}}}
	s := New(cnf)
	require.True(t, s.AssertUnitClauses())

	clause := s.AssertClause(&satstate.Clause{Literals: []int{-1}})
	require.NotNil(t, clause)
}
