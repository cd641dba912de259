package flow

import "slices"

// PortSpacing is the vertical distance between two adjacent ports.
const PortSpacing = 20.0

// Point is a coordinate in diagram units.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Segment holds both endpoints of an edge: (X0, Y0) at the source output
// port and (X1, Y1) at the target input port.
type Segment struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Start returns the source endpoint.
func (s Segment) Start() Point { return Point{X: s.X0, Y: s.Y0} }

// End returns the target endpoint.
func (s Segment) End() Point { return Point{X: s.X1, Y: s.Y1} }

// Side distinguishes input ports from output ports.
type Side int

const (
	Input Side = iota
	Output
)

// String returns "input" or "output".
func (s Side) String() string {
	if s == Output {
		return "output"
	}
	return "input"
}

// Node is a host-owned box. Position is optional: nil asks the layout
// collaborator. Port counts are fixed for the node's lifetime.
type Node struct {
	ID       string `json:"id"`
	Position *Point `json:"position,omitempty"`
	Inputs   int    `json:"inputs"`
	Outputs  int    `json:"outputs"`
	Payload  any    `json:"payload,omitempty"`
}

// Edge is a host-owned connection from an output port to an input port.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceOutput int    `json:"source_output"`
	Target       string `json:"target"`
	TargetInput  int    `json:"target_input"`
}

// NewEdge returns an edge with its canonical id.
func NewEdge(source string, output int, target string, input int) Edge {
	return Edge{
		ID:           EdgeID(source, output, target, input),
		Source:       source,
		SourceOutput: output,
		Target:       target,
		TargetInput:  input,
	}
}

// NodeRuntime is the engine's derived state for one node. Its index in
// Snapshot.Nodes is the node's ordinal for the current generation.
type NodeRuntime struct {
	ID       string   `json:"id"`
	Position Point    `json:"position"`
	Inputs   []Point  `json:"inputs"`  // anchor offset per input port
	Outputs  []Point  `json:"outputs"` // anchor offset per output port
	EdgesIn  []string `json:"edges_in"`
	EdgesOut []string `json:"edges_out"`
	Mounted  bool     `json:"mounted"` // offsets are measured, not provisional
}

// InputAnchor returns the absolute position of input port i.
func (n *NodeRuntime) InputAnchor(i int) (Point, bool) {
	if i < 0 || i >= len(n.Inputs) {
		return Point{}, false
	}
	return n.Position.Add(n.Inputs[i]), true
}

// OutputAnchor returns the absolute position of output port i.
func (n *NodeRuntime) OutputAnchor(i int) (Point, bool) {
	if i < 0 || i >= len(n.Outputs) {
		return Point{}, false
	}
	return n.Position.Add(n.Outputs[i]), true
}

func (n NodeRuntime) clone() NodeRuntime {
	n.Inputs = slices.Clone(n.Inputs)
	n.Outputs = slices.Clone(n.Outputs)
	n.EdgesIn = slices.Clone(n.EdgesIn)
	n.EdgesOut = slices.Clone(n.EdgesOut)
	return n
}

// EdgeRuntime is the engine's derived state for one edge.
//
// Placed is false while an endpoint cannot be resolved (the edge names a
// node that is not in the current node list); such an edge keeps its place
// in adjacency and in the lists reported to the host but has no geometry.
// Active is false once the edge has been deleted in the current generation.
type EdgeRuntime struct {
	Edge
	Position Segment `json:"position"`
	Placed   bool    `json:"placed"`
	Active   bool    `json:"active"`
}
