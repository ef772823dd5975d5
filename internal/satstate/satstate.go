// Package satstate defines the SAT facade contract the compiler core
// depends on (spec.md §6). The core treats this as an opaque external
// collaborator; package ginisat provides a working implementation backed
// by github.com/go-air/gini.
package satstate

// Clause is a learned clause: a disjunction of signed literals. The facade
// returns these from DecideLiteral/AssertClause on conflict and accepts
// them back via AssertClause.
type Clause struct {
	Literals []int

	// AssertionLevel is the decision level at which this clause becomes
	// unit (spec.md §6, "assertion level of a clause").
	AssertionLevel int
}

// State is the SAT facade contract of spec.md §6. All methods operate on
// a single live instance; decide/undo and assert/undo pairs are required
// to nest in strict stack discipline (spec.md §5).
type State interface {
	VarCount() int

	// IsInstantiated reports whether var has been pinned true or false,
	// by decision or by propagation.
	IsInstantiated(v int) bool

	// IsIrrelevant reports whether every input clause mentioning var is
	// currently subsumed.
	IsIrrelevant(v int) bool

	// IsImplied reports whether lit has been assigned true.
	IsImplied(lit int) bool

	// IsSubsumed reports whether clause (identified by its index into the
	// original input) currently contains a true literal.
	IsSubsumed(clauseIdx int) bool

	// LiteralWeight returns the weight of lit, defaulting to 1.0.
	LiteralWeight(lit int) float64

	// AssertUnitClauses performs one-shot unit propagation over the
	// original unit clauses. It must be called before any decision is made
	// and not again until UndoAssertUnitClauses, and returns false on
	// contradiction.
	AssertUnitClauses() bool

	// UndoAssertUnitClauses reverses AssertUnitClauses.
	UndoAssertUnitClauses()

	// DecideLiteral increments the decision level, pins lit true, and
	// propagates. It returns a non-nil learned clause on contradiction.
	DecideLiteral(lit int) *Clause

	// UndoDecideLiteral reverses the most recent DecideLiteral call,
	// regardless of its outcome.
	UndoDecideLiteral()

	// AtAssertionLevel reports whether the current decision level equals
	// clause's assertion level.
	AtAssertionLevel(clause *Clause) bool

	// AssertClause adds a previously returned learned clause to the
	// formula and propagates; it may itself return a further learned
	// clause.
	AssertClause(clause *Clause) *Clause

	// DecisionLevel returns the current decision level (0 at the root).
	DecisionLevel() int

	// DecisionTrail returns the literals currently decided, in decision
	// order. Supplemental to spec.md §6: used only for tracing (see
	// compiler.Tracer), never read by the core algorithm itself.
	DecisionTrail() []int
}
