package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-dnnf/compiler/internal/dimacs"
	"github.com/go-dnnf/compiler/internal/nnf"
	"github.com/go-dnnf/compiler/internal/satstate/ginisat"
	"github.com/go-dnnf/compiler/internal/vtree"
)

type recordingTracer struct {
	positions []SearchPosition
}

func (r *recordingTracer) Trace(p SearchPosition) {
	r.positions = append(r.positions, p)
}

func TestTracerObservesEveryDecide(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 2, Clauses: [][]int{{1, 2}, {-1, -2}}}
	root, err := vtree.Build(cnf, natural(2))
	require.NoError(t, err)

	sat := ginisat.New(cnf)
	mgr := nnf.NewManager()
	tracer := &recordingTracer{}
	c, err := New(sat, WithNNFManager(mgr), WithCacheCapacity(16), WithTracer(tracer))
	require.NoError(t, err)

	c.Compile(root)

	require.NotEmpty(t, tracer.positions, "expected at least one decide to be traced")
	for _, p := range tracer.positions {
		assert.NotNil(t, p.Trail())
	}
}

func TestNoopTracerIsDefault(t *testing.T) {
	cnf := &dimacs.CNF{NumVars: 1, Clauses: [][]int{{1}}}
	root, err := vtree.Build(cnf, natural(1))
	require.NoError(t, err)

	sat := ginisat.New(cnf)
	c, err := New(sat, WithNNFManager(nnf.NewManager()), WithCacheCapacity(16))
	require.NoError(t, err)

	assert.IsType(t, NoopTracer{}, c.tracer)
	c.Compile(root) // must not panic with a nil-safe noop tracer
}
