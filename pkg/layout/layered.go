package layout

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowchart/pkg/dag"
	"github.com/matzehuels/flowchart/pkg/dag/transform"
)

// Default spacing between boxes for [Layered].
const (
	DefaultColumnGap = 80.0
	DefaultRowGap    = 40.0
)

// Layered is a deterministic pure Go layout. Columns come from longest-path
// layering; within a column nodes stack top-down in insertion order.
type Layered struct {
	ColumnGap float64 // horizontal space between columns
	RowGap    float64 // vertical space between boxes in a column
}

// NewLayered returns a Layered layout with default gaps.
func NewLayered() *Layered {
	return &Layered{ColumnGap: DefaultColumnGap, RowGap: DefaultRowGap}
}

// Name includes the gaps so cached results are keyed by them.
func (l *Layered) Name() string {
	return fmt.Sprintf("layered(%g,%g)", l.ColumnGap, l.RowGap)
}

// Layout assigns rows on g and converts them to positions. Every node of g
// receives a position.
func (l *Layered) Layout(ctx context.Context, g *dag.DAG) (map[string]Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transform.AssignLayers(g)

	result := make(map[string]Position, g.NodeCount())
	for _, row := range g.RowIDs() {
		x := float64(row) * (NodeWidth + l.ColumnGap)
		for i, n := range g.NodesInRow(row) {
			result[n.ID] = Position{X: x, Y: float64(i) * (NodeHeight + l.RowGap)}
		}
	}
	return result, nil
}

var _ Layouter = (*Layered)(nil)
