// Package ginisat implements internal/satstate.State on top of
// github.com/go-air/gini. The decide/undo mechanics generalize the
// Assume/Test/Untest push-pop depth-tracking discipline used to bracket
// one step of backtracking search in gini-based solvers: here, one
// Test/Untest pair brackets one vtree decision instead.
package ginisat

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"

	"github.com/go-dnnf/compiler/internal/dimacs"
	"github.com/go-dnnf/compiler/internal/satstate"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// State is a satstate.State backed by a single gini instance.
type State struct {
	g inter.S

	varCount   int
	weights    map[int]float64
	clauses    [][]int
	varClauses map[int][]int // var -> indices of clauses mentioning it

	units         []int // unit clause literals, held back until AssertUnitClauses
	unitsAsserted bool

	decisions []int // signed literal trail, one entry per open DecideLiteral
}

// New builds a ginisat.State over cnf. Non-unit clauses are taught to gini
// immediately; unit clauses are held back so AssertUnitClauses can be
// applied and undone independently of the rest of the formula, matching
// the separate "assert unit clauses" step of spec.md §4.3.
func New(cnf *dimacs.CNF) *State {
	g := gini.New()
	s := &State{
		g:          g,
		varCount:   cnf.NumVars,
		weights:    cnf.Weights,
		clauses:    cnf.Clauses,
		varClauses: make(map[int][]int),
	}
	for idx, clause := range cnf.Clauses {
		for _, lit := range clause {
			s.varClauses[absLit(lit)] = append(s.varClauses[absLit(lit)], idx)
		}
		if len(clause) == 1 {
			s.units = append(s.units, clause[0])
			continue
		}
		for _, lit := range clause {
			g.Add(z.Dimacs2Lit(lit))
		}
		g.Add(z.LitNull)
	}
	return s
}

func absLit(lit int) int {
	if lit < 0 {
		return -lit
	}
	return lit
}

func (s *State) VarCount() int { return s.varCount }

func (s *State) isTrue(lit int) bool { return s.g.Value(z.Dimacs2Lit(lit)) }

// IsInstantiated relies on gini leaving both polarities of an unassigned
// literal reporting false under the current propagation context: exactly
// one of lit/-lit reads true once var has been pinned.
func (s *State) IsInstantiated(v int) bool {
	return s.isTrue(v) != s.isTrue(-v)
}

func (s *State) IsImplied(lit int) bool { return s.isTrue(lit) }

func (s *State) IsSubsumed(clauseIdx int) bool {
	for _, lit := range s.clauses[clauseIdx] {
		if s.isTrue(lit) {
			return true
		}
	}
	return false
}

func (s *State) IsIrrelevant(v int) bool {
	for _, idx := range s.varClauses[v] {
		if !s.IsSubsumed(idx) {
			return false
		}
	}
	return true
}

func (s *State) LiteralWeight(lit int) float64 {
	if w, ok := s.weights[lit]; ok {
		return w
	}
	return 1.0
}

func (s *State) AssertUnitClauses() bool {
	lits := make([]z.Lit, len(s.units))
	for i, u := range s.units {
		lits[i] = z.Dimacs2Lit(u)
	}
	s.g.Assume(lits...)
	outcome, _ := s.g.Test(nil)
	s.unitsAsserted = true
	return outcome != unsatisfiable
}

func (s *State) UndoAssertUnitClauses() {
	s.g.Untest()
	s.unitsAsserted = false
}

func (s *State) DecideLiteral(lit int) *satstate.Clause {
	s.g.Assume(z.Dimacs2Lit(lit))
	outcome, _ := s.g.Test(nil)
	s.decisions = append(s.decisions, lit)
	if outcome != unsatisfiable {
		return nil
	}
	return s.learnConflict()
}

func (s *State) UndoDecideLiteral() {
	s.g.Untest()
	s.decisions = s.decisions[:len(s.decisions)-1]
}

// learnConflict builds the clause documented as an Open Question decision
// in DESIGN.md: the negation of the whole current decision trail, asserting
// at the depth of the second-most-recent decision. gini's inter.S exposes
// no per-literal decision levels, so a true first-UIP clause can't be
// reconstructed; this is weaker (it purges more of the trail than strictly
// necessary) but is sound and asserting, which is all spec.md §4.5 needs.
func (s *State) learnConflict() *satstate.Clause {
	level := len(s.decisions)
	assertionLevel := level - 1
	if assertionLevel < 0 {
		assertionLevel = 0
	}
	lits := make([]int, len(s.decisions))
	for i, d := range s.decisions {
		lits[i] = -d
	}
	return &satstate.Clause{Literals: lits, AssertionLevel: assertionLevel}
}

func (s *State) AtAssertionLevel(clause *satstate.Clause) bool {
	return len(s.decisions) == clause.AssertionLevel
}

// AssertClause adds clause to the formula permanently (learned clauses are
// never retracted) and checks propagation under the live assumption stack
// without leaving a new Test frame behind.
func (s *State) AssertClause(clause *satstate.Clause) *satstate.Clause {
	for _, lit := range clause.Literals {
		s.g.Add(z.Dimacs2Lit(lit))
	}
	s.g.Add(z.LitNull)

	outcome, _ := s.g.Test(nil)
	s.g.Untest()
	if outcome != unsatisfiable {
		return nil
	}
	return s.learnConflict()
}

func (s *State) DecisionLevel() int { return len(s.decisions) }

func (s *State) DecisionTrail() []int {
	trail := make([]int, len(s.decisions))
	copy(trail, s.decisions)
	return trail
}

var _ satstate.State = (*State)(nil)
