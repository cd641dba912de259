package graph

import (
	"maps"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
)

// =============================================================================
// Document - Host Inventory Serialization
// =============================================================================

// Document is the canonical serialization format for a flow chart.
// Generation is the host's edge generation counter; a loader that replaces
// the edge list should bump it.
type Document struct {
	Generation uint64       `json:"generation,omitempty" toml:"generation,omitempty"`
	Nodes      []Node       `json:"nodes" toml:"nodes"`
	Edges      []Edge       `json:"edges" toml:"edges"`
	Events     []flow.Event `json:"events,omitempty" toml:"events,omitempty"`
}

// Node is a serialized diagram box.
type Node struct {
	ID       string         `json:"id" toml:"id"`
	Label    string         `json:"label,omitempty" toml:"label,omitempty"` // Display label (defaults to ID)
	Inputs   int            `json:"inputs,omitempty" toml:"inputs,omitempty"`
	Outputs  int            `json:"outputs,omitempty" toml:"outputs,omitempty"`
	Position *flow.Point    `json:"position,omitempty" toml:"position,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" toml:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a serialized connection from an output port to an input port.
type Edge struct {
	ID     string `json:"id,omitempty" toml:"id,omitempty"`
	From   string `json:"from" toml:"from"`
	Output int    `json:"output" toml:"output"`
	To     string `json:"to" toml:"to"`
	Input  int    `json:"input" toml:"input"`
}

// CanonicalID returns the edge's id as derived from its endpoints.
func (e Edge) CanonicalID() string {
	return flow.EdgeID(e.From, e.Output, e.To, e.Input)
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks node ids and port counts, fills in missing edge ids and
// checks edge ports against the nodes they name. Edges naming absent nodes
// pass: the engine keeps them until the node appears.
func (d *Document) Validate() error {
	ports := make(map[string][2]int, len(d.Nodes))
	for _, n := range d.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return err
		}
		if _, dup := ports[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		if err := errors.ValidatePortCount(n.ID, n.Inputs, n.Outputs); err != nil {
			return err
		}
		ports[n.ID] = [2]int{n.Inputs, n.Outputs}
	}

	seen := make(map[string]bool, len(d.Edges))
	for i := range d.Edges {
		e := &d.Edges[i]
		id := e.CanonicalID()
		if e.ID == "" {
			e.ID = id
		} else if e.ID != id {
			return errors.New(errors.ErrCodeInvalidEdgeID, "edge id %q does not match its endpoints (%s)", e.ID, id)
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate edge %q", id)
		}
		seen[id] = true

		if e.Output < 0 || e.Input < 0 {
			return errors.New(errors.ErrCodeInvalidPort, "edge %q: negative port index", id)
		}
		if p, ok := ports[e.From]; ok && e.Output >= p[1] {
			return errors.New(errors.ErrCodeInvalidPort, "edge %q: node %q has %d outputs", id, e.From, p[1])
		}
		if p, ok := ports[e.To]; ok && e.Input >= p[0] {
			return errors.New(errors.ErrCodeInvalidPort, "edge %q: node %q has %d inputs", id, e.To, p[0])
		}
	}
	return nil
}

// =============================================================================
// Document <-> Engine Conversion
// =============================================================================

// Flow converts the document to engine host lists. Each flow.Node carries
// its graph.Node as payload so labels and metadata survive a round trip.
func (d *Document) Flow() ([]flow.Node, []flow.Edge) {
	nodes := make([]flow.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		var pos *flow.Point
		if n.Position != nil {
			p := *n.Position
			pos = &p
		}
		payload := n
		payload.Position = nil
		payload.Meta = maps.Clone(n.Meta)
		nodes[i] = flow.Node{
			ID:       n.ID,
			Position: pos,
			Inputs:   n.Inputs,
			Outputs:  n.Outputs,
			Payload:  payload,
		}
	}

	edges := make([]flow.Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = flow.Edge{
			ID:           e.ID,
			Source:       e.From,
			SourceOutput: e.Output,
			Target:       e.To,
			TargetInput:  e.Input,
		}
		if edges[i].ID == "" {
			edges[i].ID = e.CanonicalID()
		}
	}
	return nodes, edges
}

// FromFlow builds a document from engine host lists.
func FromFlow(nodes []flow.Node, edges []flow.Edge, gen uint64) *Document {
	d := &Document{
		Generation: gen,
		Nodes:      make([]Node, len(nodes)),
		Edges:      make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out := Node{ID: n.ID}
		if p, ok := n.Payload.(Node); ok {
			out.Label = p.Label
			out.Meta = maps.Clone(p.Meta)
		}
		out.Inputs, out.Outputs = n.Inputs, n.Outputs
		if n.Position != nil {
			p := *n.Position
			out.Position = &p
		}
		d.Nodes[i] = out
	}
	for i, e := range edges {
		d.Edges[i] = Edge{
			ID:     e.ID,
			From:   e.Source,
			Output: e.SourceOutput,
			To:     e.Target,
			Input:  e.TargetInput,
		}
	}
	return d
}

// labelOf returns the display label carried in a flow.Node payload.
func labelOf(n flow.Node) string {
	if p, ok := n.Payload.(Node); ok {
		return p.DisplayLabel()
	}
	return n.ID
}
