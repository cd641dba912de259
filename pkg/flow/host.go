package flow

import (
	"context"
	"slices"
)

// Document is an in-memory Host that owns a node and edge inventory and a
// generation counter. It stores whatever the engine reports and hands it
// back on Commit, the way a UI framework host would on its next render.
type Document struct {
	Nodes      []Node
	Edges      []Edge
	Generation uint64
}

// NewDocument returns a document holding copies of nodes and edges.
func NewDocument(nodes []Node, edges []Edge) *Document {
	return &Document{Nodes: slices.Clone(nodes), Edges: slices.Clone(edges)}
}

// EdgesChanged stores the engine's edge list. The engine already holds it,
// so the generation is not bumped.
func (d *Document) EdgesChanged(edges []Edge) { d.Edges = edges }

// NodesChanged stores the engine's node list.
func (d *Document) NodesChanged(nodes []Node) { d.Nodes = nodes }

// SetEdges replaces the edge list from outside the engine and bumps the
// generation so the next Commit rebuilds.
func (d *Document) SetEdges(edges []Edge) {
	d.Edges = slices.Clone(edges)
	d.Generation++
}

// SetNodes replaces the node list from outside the engine. Node count
// changes rebuild on their own; bump reports whether to force a rebuild
// for same-count replacements.
func (d *Document) SetNodes(nodes []Node, bump bool) {
	d.Nodes = slices.Clone(nodes)
	if bump {
		d.Generation++
	}
}

// Commit syncs the document into e and reports whether e rebuilt.
func (d *Document) Commit(ctx context.Context, e *Engine) (bool, error) {
	return e.Sync(ctx, d.Nodes, d.Edges, d.Generation)
}
