package compiler

import (
	"fmt"
	"io"

	"github.com/go-dnnf/compiler/internal/satstate"
)

// SearchPosition is a snapshot of the driver's state right after a decide:
// the literals currently assumed on the trail (in decision order) and the
// clause that decide learned, if any.
type SearchPosition interface {
	Trail() []int
	Learned() *satstate.Clause
}

// Tracer observes the driver's search without influencing it: Trace is
// called, read-only, after every decide. Clauses learned later, while
// asserting a learned clause, are not reported.
type Tracer interface {
	Trace(p SearchPosition)
}

// NoopTracer discards every event. It is the default when New is not given
// a WithTracer option.
type NoopTracer struct{}

func (NoopTracer) Trace(_ SearchPosition) {}

// LoggingTracer writes a human-readable "---\nTrail:\n- ...\n" block per
// event to Writer.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nTrail:\n")
	for _, lit := range p.Trail() {
		fmt.Fprintf(t.Writer, "- %d\n", lit)
	}
	if learned := p.Learned(); learned != nil {
		fmt.Fprintf(t.Writer, "Learned: %v (assertion level %d)\n", learned.Literals, learned.AssertionLevel)
	}
}

type searchPosition struct {
	trail   []int
	learned *satstate.Clause
}

func (p searchPosition) Trail() []int              { return p.trail }
func (p searchPosition) Learned() *satstate.Clause { return p.learned }
