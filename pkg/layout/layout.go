package layout

import (
	"context"
	"time"

	"github.com/matzehuels/flowchart/pkg/dag"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// Node footprint used by every layout engine, in diagram units.
const (
	NodeWidth  = 200.0
	NodeHeight = 100.0
)

// Position is the top-left corner of a node in diagram units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layouter computes a left-to-right arrangement of a node graph.
type Layouter interface {
	// Name identifies the algorithm and its parameters. It is part of the
	// cache key, so two layouters with the same name must agree on output.
	Name() string

	// Layout returns a position per node id. Nodes may be missing from the
	// result; callers decide how to degrade.
	Layout(ctx context.Context, g *dag.DAG) (map[string]Position, error)
}

// Func adapts a plain function to the Layouter interface.
type Func func(ctx context.Context, g *dag.DAG) (map[string]Position, error)

// Name returns "func".
func (Func) Name() string { return "func" }

// Layout calls f.
func (f Func) Layout(ctx context.Context, g *dag.DAG) (map[string]Position, error) {
	return f(ctx, g)
}

// Run calls l.Layout and reports start and completion to the registered
// layout hooks.
func Run(ctx context.Context, l Layouter, g *dag.DAG) (map[string]Position, error) {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, l.Name(), g.NodeCount())
	start := time.Now()
	pos, err := l.Layout(ctx, g)
	hooks.OnLayoutComplete(ctx, l.Name(), time.Since(start), err)
	return pos, err
}

// pairs extracts the directed node pairs of g in insertion order.
func pairs(g *dag.DAG) [][2]string {
	edges := g.Edges()
	out := make([][2]string, len(edges))
	for i, e := range edges {
		out[i] = [2]string{e.From, e.To}
	}
	return out
}
