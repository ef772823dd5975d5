// Package compiler implements the compile/count driver of spec.md
// §4.3-§4.5: dispatch over a vtree's three node shapes (leaf,
// decomposition, Shannon), backed by a component cache and an external
// SAT facade, producing either a Decision-DNNF node (Compile) or a
// weighted model count (Count). Grounded line-for-line on miniC2D's
// compile.c and count.c.
package compiler

import (
	"github.com/sirupsen/logrus"

	"github.com/go-dnnf/compiler/internal/cache"
	"github.com/go-dnnf/compiler/internal/nnf"
	"github.com/go-dnnf/compiler/internal/satstate"
	"github.com/go-dnnf/compiler/internal/telemetry"
	"github.com/go-dnnf/compiler/internal/vtree"
)

// Compiler drives either compilation or weighted model counting over a
// single vtree, against a single live SAT facade instance. Compile and
// Count keep separate caches: a node cached while compiling and a count
// cached while counting would otherwise collide on the same (vtree node,
// key) pair with incompatible value types.
type Compiler struct {
	sat           satstate.State
	nnfMgr        *nnf.Manager
	cacheCapacity int
	nnfCache      *cache.Cache
	countCache    *cache.Cache
	log           logrus.FieldLogger
	tracer        Tracer
}

// Option configures a Compiler at construction time, the same
// functional-options-plus-defaults shape used elsewhere in this codebase's
// ecosystem for constructors with several optional dependencies.
type Option func(c *Compiler) error

// WithNNFManager sets the NNF node store Compile will build into. Required
// for Compile; unused by Count.
func WithNNFManager(mgr *nnf.Manager) Option {
	return func(c *Compiler) error {
		c.nnfMgr = mgr
		return nil
	}
}

// WithCacheCapacity sets the bucket count for both the compile-path and
// count-path component caches. Defaults to 4096.
func WithCacheCapacity(n int) Option {
	return func(c *Compiler) error {
		c.cacheCapacity = n
		return nil
	}
}

// WithLogger overrides the default logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Compiler) error {
		c.log = log
		return nil
	}
}

// WithTracer registers an observer called after every decide, with the
// clause that decide learned, if any. Defaults to NoopTracer.
func WithTracer(t Tracer) Option {
	return func(c *Compiler) error {
		c.tracer = t
		return nil
	}
}

// defaults fills in any field an explicit Option left unset.
var defaults = []Option{
	func(c *Compiler) error {
		if c.cacheCapacity == 0 {
			c.cacheCapacity = 4096
		}
		return nil
	},
	func(c *Compiler) error {
		if c.log == nil {
			c.log = logrus.StandardLogger()
		}
		return nil
	},
	func(c *Compiler) error {
		if c.tracer == nil {
			c.tracer = NoopTracer{}
		}
		return nil
	},
}

// New constructs a Compiler bound to sat. A nil WithNNFManager is fine for
// callers who only ever intend to call Count, which never touches the NNF
// node store.
func New(sat satstate.State, options ...Option) (*Compiler, error) {
	c := &Compiler{sat: sat}
	for _, option := range append(append([]Option{}, options...), defaults...) {
		if err := option(c); err != nil {
			return nil, err
		}
	}
	c.nnfCache = cache.New(c.cacheCapacity)
	c.countCache = cache.New(c.cacheCapacity)
	return c, nil
}

// trace reports the current trail and the just-observed learned clause (nil
// on a clean decide) to the configured Tracer.
func (c *Compiler) trace(learned *satstate.Clause) {
	c.tracer.Trace(searchPosition{trail: c.sat.DecisionTrail(), learned: learned})
}

// NNFCacheStats snapshots the compile-path cache's counters.
func (c *Compiler) NNFCacheStats() telemetry.CacheStats { return c.nnfCache.Stats() }

// CountCacheStats snapshots the count-path cache's counters.
func (c *Compiler) CountCacheStats() telemetry.CacheStats { return c.countCache.Stats() }

// Compile runs knowledge compilation over root, returning the Decision-DNNF
// node representing the CNF's models. The returned handle is meaningful
// only relative to the Manager passed to New.
func (c *Compiler) Compile(root *vtree.Node) nnf.Handle {
	if !c.sat.AssertUnitClauses() {
		c.log.Debug("unit propagation found a contradiction before compilation began")
		return c.nnfMgr.ZERO
	}
	defer c.sat.UndoAssertUnitClauses()

	node, learned := c.dispatchCompile(root)
	if learned != nil {
		c.log.Debug("root-level conflict survived compilation; cnf is inconsistent")
		return c.nnfMgr.ZERO
	}
	c.nnfMgr.SetRoot(node)
	return node
}

func (c *Compiler) dispatchCompile(node *vtree.Node) (nnf.Handle, *satstate.Clause) {
	if v, ok := c.nnfCache.Lookup(node, c.sat); ok {
		return v.(nnf.Handle), nil
	}

	var result nnf.Handle
	var learned *satstate.Clause
	switch {
	case node.IsLeaf():
		result = c.var2nnf(node.Var)
	case node.IsShannonNode():
		result, learned = c.compileShannon(node)
	default:
		result, learned = c.compileDecomposed(node)
	}

	if learned == nil {
		c.nnfCache.Insert(node, c.sat, result)
		telemetry.CompileNodeCount.Inc()
	}
	return result, learned
}

func (c *Compiler) var2nnf(v int) nnf.Handle {
	if c.sat.IsImplied(v) {
		return c.nnfMgr.LiteralToNode(v)
	}
	if c.sat.IsImplied(-v) {
		return c.nnfMgr.LiteralToNode(-v)
	}
	return c.nnfMgr.ONE
}

func (c *Compiler) compileDecomposed(node *vtree.Node) (nnf.Handle, *satstate.Clause) {
	l, learned := c.dispatchCompile(node.Left)
	if learned != nil {
		c.nnfCache.DropSubtree(node.Left)
		return nnf.Handle{}, learned
	}

	r, learned := c.dispatchCompile(node.Right)
	if learned != nil {
		c.nnfCache.DropSubtree(node)
		return nnf.Handle{}, learned
	}

	return c.nnfMgr.Conjoin(l, r), nil
}

// compileShannon is an iterative rendering of compile_vtree_shannon +
// compile_with_literal: the original recursively re-enters
// compile_vtree_shannon once a learned clause has been asserted at this
// node's level; here that re-entry is a loop continuation instead, which
// has the same effect (every branch re-checks instantiated/irrelevant and
// re-decides both literals) without growing the call stack on deep
// backtracks.
func (c *Compiler) compileShannon(node *vtree.Node) (nnf.Handle, *satstate.Clause) {
	v := node.ShannonVar()

	for {
		if c.sat.IsInstantiated(v) || c.sat.IsIrrelevant(v) {
			r, learned := c.dispatchCompile(node.Right)
			if learned != nil {
				return nnf.Handle{}, learned
			}
			return c.nnfMgr.Conjoin(r, c.var2nnf(v)), nil
		}

		pnode, learned, retry := c.compileWithLiteral(node, v)
		if retry {
			continue
		}
		if learned != nil {
			return nnf.Handle{}, learned
		}

		nnode, learned, retry := c.compileWithLiteral(node, -v)
		if retry {
			continue
		}
		if learned != nil {
			return nnf.Handle{}, learned
		}

		if pnode == nnode {
			return pnode, nil
		}

		pl := c.nnfMgr.LiteralToNode(v)
		nl := c.nnfMgr.LiteralToNode(-v)
		pc := c.nnfMgr.Conjoin(pl, pnode)
		nc := c.nnfMgr.Conjoin(nl, nnode)
		return c.nnfMgr.Disjoin(v, pc, nc), nil
	}
}

// compileWithLiteral decides lit, compiles node.Right under it, and undoes
// the decision. retry reports that a learned clause was successfully
// asserted at this level and the caller should restart node's Shannon case
// from scratch (mirrors compile_with_literal's recursive re-entry).
func (c *Compiler) compileWithLiteral(node *vtree.Node, lit int) (value nnf.Handle, learned *satstate.Clause, retry bool) {
	learned = c.sat.DecideLiteral(lit)
	c.trace(learned)
	if learned == nil {
		value, learned = c.dispatchCompile(node.Right)
	}
	c.sat.UndoDecideLiteral()

	if learned == nil {
		return value, nil, false
	}

	if c.sat.AtAssertionLevel(learned) {
		learned = c.sat.AssertClause(learned)
		if learned == nil {
			return nnf.Handle{}, nil, true
		}
	}
	return nnf.Handle{}, learned, false
}

// Count runs weighted model counting over root without building an NNF.
func (c *Compiler) Count(root *vtree.Node) float64 {
	if !c.sat.AssertUnitClauses() {
		c.log.Debug("unit propagation found a contradiction before counting began")
		return 0
	}
	defer c.sat.UndoAssertUnitClauses()

	count, learned := c.dispatchCount(root)
	if learned != nil {
		return 0
	}
	return count
}

func (c *Compiler) dispatchCount(node *vtree.Node) (float64, *satstate.Clause) {
	if v, ok := c.countCache.Lookup(node, c.sat); ok {
		return v.(float64), nil
	}

	var result float64
	var learned *satstate.Clause
	switch {
	case node.IsLeaf():
		result = c.var2count(node.Var)
	case node.IsShannonNode():
		result, learned = c.countShannon(node)
	default:
		result, learned = c.countDecomposed(node)
	}

	if learned == nil {
		c.countCache.Insert(node, c.sat, result)
	}
	return result, learned
}

func (c *Compiler) var2count(v int) float64 {
	if c.sat.IsImplied(v) {
		return c.sat.LiteralWeight(v)
	}
	if c.sat.IsImplied(-v) {
		return c.sat.LiteralWeight(-v)
	}
	return c.sat.LiteralWeight(v) + c.sat.LiteralWeight(-v)
}

func (c *Compiler) countDecomposed(node *vtree.Node) (float64, *satstate.Clause) {
	l, learned := c.dispatchCount(node.Left)
	if learned != nil {
		c.countCache.DropSubtree(node.Left)
		return 0, learned
	}
	if l == 0 {
		return 0, nil
	}

	r, learned := c.dispatchCount(node.Right)
	if learned != nil {
		c.countCache.DropSubtree(node)
		return 0, learned
	}

	return l * r, nil
}

func (c *Compiler) countShannon(node *vtree.Node) (float64, *satstate.Clause) {
	v := node.ShannonVar()

	for {
		if c.sat.IsInstantiated(v) || c.sat.IsIrrelevant(v) {
			r, learned := c.dispatchCount(node.Right)
			if learned != nil {
				return 0, learned
			}
			return r * c.var2count(v), nil
		}

		pcount, learned, retry := c.countWithLiteral(node, v)
		if retry {
			continue
		}
		if learned != nil {
			return 0, learned
		}

		ncount, learned, retry := c.countWithLiteral(node, -v)
		if retry {
			continue
		}
		if learned != nil {
			return 0, learned
		}

		return pcount*c.sat.LiteralWeight(v) + ncount*c.sat.LiteralWeight(-v), nil
	}
}

func (c *Compiler) countWithLiteral(node *vtree.Node, lit int) (value float64, learned *satstate.Clause, retry bool) {
	learned = c.sat.DecideLiteral(lit)
	c.trace(learned)
	if learned == nil {
		value, learned = c.dispatchCount(node.Right)
	}
	c.sat.UndoDecideLiteral()

	if learned == nil {
		return value, nil, false
	}

	if c.sat.AtAssertionLevel(learned) {
		learned = c.sat.AssertClause(learned)
		if learned == nil {
			return 0, nil, true
		}
	}
	return 0, learned, false
}
