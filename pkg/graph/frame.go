package graph

import (
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/layout"
)

// =============================================================================
// Frame - Rendered Engine State
// =============================================================================

// Frame is everything a renderer needs to paint one engine state: node boxes
// with absolute port anchors, placed edges and the pending edge.
type Frame struct {
	EngineID   string        `json:"engine_id"`
	Generation uint64        `json:"generation"`
	Nodes      []FrameNode   `json:"nodes"`
	Edges      []FrameEdge   `json:"edges"`
	Pending    *flow.Segment `json:"pending,omitempty"`
}

// FrameNode is a positioned node with absolute port anchors.
type FrameNode struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	Position flow.Point   `json:"position"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Inputs   []flow.Point `json:"inputs"`
	Outputs  []flow.Point `json:"outputs"`
	Mounted  bool         `json:"mounted,omitempty"`
}

// FrameEdge is a placed active edge.
type FrameEdge struct {
	ID       string       `json:"id"`
	Position flow.Segment `json:"position"`
}

// NewFrame captures the current state of e.
func NewFrame(e *flow.Engine) Frame {
	snap := e.Snapshot()
	labels := make(map[string]string, len(snap.Nodes))
	for _, n := range e.Nodes() {
		labels[n.ID] = labelOf(n)
	}

	f := Frame{
		EngineID:   e.ID(),
		Generation: snap.Generation,
		Nodes:      make([]FrameNode, len(snap.Nodes)),
		Edges:      make([]FrameEdge, 0, len(snap.Order)),
	}
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		fn := FrameNode{
			ID:       n.ID,
			Label:    labels[n.ID],
			Position: n.Position,
			Width:    layout.NodeWidth,
			Height:   layout.NodeHeight,
			Inputs:   make([]flow.Point, len(n.Inputs)),
			Outputs:  make([]flow.Point, len(n.Outputs)),
			Mounted:  n.Mounted,
		}
		if fn.Label == "" {
			fn.Label = n.ID
		}
		for j := range n.Inputs {
			fn.Inputs[j], _ = n.InputAnchor(j)
		}
		for j := range n.Outputs {
			fn.Outputs[j], _ = n.OutputAnchor(j)
		}
		f.Nodes[i] = fn
	}
	for _, er := range snap.Placed() {
		f.Edges = append(f.Edges, FrameEdge{ID: er.ID, Position: er.Position})
	}
	if seg, ok := e.PendingSegment(); ok {
		f.Pending = &seg
	}
	return f
}

// Bounds returns the smallest rectangle covering every node box, edge and
// port anchor in f. An empty frame has zero bounds.
func (f Frame) Bounds() (minX, minY, maxX, maxY float64) {
	first := true
	add := func(p flow.Point) {
		if first {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			first = false
			return
		}
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	for _, n := range f.Nodes {
		top, bottom := n.Box()
		add(top)
		add(bottom)
		for _, p := range n.Inputs {
			add(p)
		}
		for _, p := range n.Outputs {
			add(p)
		}
	}
	for _, e := range f.Edges {
		add(e.Position.Start())
		add(e.Position.End())
	}
	if f.Pending != nil {
		add(f.Pending.Start())
		add(f.Pending.End())
	}
	return minX, minY, maxX, maxY
}

// Box returns the top-left and bottom-right corners of the node's box. Port
// anchors are centred on y = 0 relative to the node origin, so the box is
// centred there too and widened to cover every anchor.
func (n FrameNode) Box() (topLeft, bottomRight flow.Point) {
	half := n.Height / 2
	for _, p := range append(append([]flow.Point{}, n.Inputs...), n.Outputs...) {
		half = max(half, abs(p.Y-n.Position.Y)+flow.PortSpacing/2)
	}
	right := n.Position.X + n.Width
	for _, p := range n.Outputs {
		right = max(right, p.X)
	}
	return flow.Point{X: n.Position.X, Y: n.Position.Y - half},
		flow.Point{X: right, Y: n.Position.Y + half}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
