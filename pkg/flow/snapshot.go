package flow

import (
	"context"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/layout"
)

// Snapshot is the derived runtime state for one generation of the host's
// node and edge lists.
type Snapshot struct {
	Generation uint64                  `json:"generation"`
	Nodes      []NodeRuntime           `json:"nodes"`
	Index      map[string]int          `json:"-"`
	Edges      map[string]*EdgeRuntime `json:"edges"`
	Order      []string                `json:"order"` // edge ids in insertion order
}

// BuildOptions configures Build. Zero values select the defaults.
type BuildOptions struct {
	Layouter  layout.Layouter // default layout.NewLayered()
	Logger    *log.Logger     // default log.Default()
	NodeWidth float64         // provisional width for output anchors, default layout.NodeWidth
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Layouter == nil {
		o.Layouter = layout.NewLayered()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = layout.NodeWidth
	}
	return o
}

// Build derives a snapshot from host lists.
//
// Positions come from each node's Position; if any node lacks one the
// layouter places the whole list and explicit positions still win. Port
// offsets are provisional. Every edge is registered active; an edge naming
// a missing node or port keeps its place in the adjacency of the end that
// exists but stays unplaced. Edge ids are always derived from the
// endpoints, so two edges joining the same ports collapse into one.
// Duplicate node ids and duplicate edges keep their first occurrence.
func Build(ctx context.Context, nodes []Node, edges []Edge, opts BuildOptions) *Snapshot {
	opts = opts.withDefaults()
	logger := opts.Logger

	var auto map[string]Point
	if slices.ContainsFunc(nodes, func(n Node) bool { return n.Position == nil }) {
		auto = LayeredLayout(ctx, opts.Layouter, nodes, edges, logger)
	}

	s := &Snapshot{
		Nodes: make([]NodeRuntime, 0, len(nodes)),
		Index: make(map[string]int, len(nodes)),
		Edges: make(map[string]*EdgeRuntime, len(edges)),
		Order: make([]string, 0, len(edges)),
	}

	for _, n := range nodes {
		if _, dup := s.Index[n.ID]; dup {
			logger.Warn("duplicate node id, keeping first", "node", n.ID)
			continue
		}
		pos := auto[n.ID]
		if n.Position != nil {
			pos = *n.Position
		}
		s.Index[n.ID] = len(s.Nodes)
		s.Nodes = append(s.Nodes, NodeRuntime{
			ID:       n.ID,
			Position: pos,
			Inputs:   portOffsets(opts.NodeWidth, max(n.Inputs, 0), Input),
			Outputs:  portOffsets(opts.NodeWidth, max(n.Outputs, 0), Output),
			EdgesIn:  []string{},
			EdgesOut: []string{},
		})
	}

	for _, e := range edges {
		canonical := EdgeID(e.Source, e.SourceOutput, e.Target, e.TargetInput)
		if e.ID != "" && e.ID != canonical {
			logger.Warn("edge id does not match its endpoints, renamed", "edge", e.ID, "id", canonical)
		}
		e.ID = canonical
		if _, dup := s.Edges[e.ID]; dup {
			logger.Warn("duplicate edge, keeping first", "edge", e.ID)
			continue
		}

		er := &EdgeRuntime{Edge: e, Active: true}
		s.Edges[e.ID] = er
		s.Order = append(s.Order, e.ID)

		if i, ok := s.Index[e.Source]; ok {
			s.Nodes[i].EdgesOut = append(s.Nodes[i].EdgesOut, e.ID)
		}
		if i, ok := s.Index[e.Target]; ok {
			s.Nodes[i].EdgesIn = append(s.Nodes[i].EdgesIn, e.ID)
		}
		if !s.place(er) {
			logger.Warn("edge references missing node or port", "edge", e.ID, "route", describe(e))
		}
	}
	return s
}

// place computes both endpoints of er from the current anchors. It reports
// false, leaving er unplaced, when either endpoint cannot be resolved.
func (s *Snapshot) place(er *EdgeRuntime) bool {
	start, ok1 := s.sourceAnchor(er.Edge)
	end, ok2 := s.targetAnchor(er.Edge)
	if !ok1 || !ok2 {
		er.Placed = false
		return false
	}
	er.Position = Segment{X0: start.X, Y0: start.Y, X1: end.X, Y1: end.Y}
	er.Placed = true
	return true
}

func (s *Snapshot) sourceAnchor(e Edge) (Point, bool) {
	i, ok := s.Index[e.Source]
	if !ok {
		return Point{}, false
	}
	return s.Nodes[i].OutputAnchor(e.SourceOutput)
}

func (s *Snapshot) targetAnchor(e Edge) (Point, bool) {
	i, ok := s.Index[e.Target]
	if !ok {
		return Point{}, false
	}
	return s.Nodes[i].InputAnchor(e.TargetInput)
}

// Node returns the runtime for ordinal i.
func (s *Snapshot) Node(i int) (*NodeRuntime, bool) {
	if i < 0 || i >= len(s.Nodes) {
		return nil, false
	}
	return &s.Nodes[i], true
}

// Lookup returns the runtime for node id.
func (s *Snapshot) Lookup(id string) (*NodeRuntime, bool) {
	i, ok := s.Index[id]
	if !ok {
		return nil, false
	}
	return &s.Nodes[i], true
}

// ActiveEdges returns the active edges in insertion order.
func (s *Snapshot) ActiveEdges() []Edge {
	out := make([]Edge, 0, len(s.Order))
	for _, id := range s.Order {
		if er := s.Edges[id]; er != nil && er.Active {
			out = append(out, er.Edge)
		}
	}
	return out
}

// Placed returns the active edges that have geometry, in insertion order.
func (s *Snapshot) Placed() []*EdgeRuntime {
	out := make([]*EdgeRuntime, 0, len(s.Order))
	for _, id := range s.Order {
		if er := s.Edges[id]; er != nil && er.Active && er.Placed {
			out = append(out, er)
		}
	}
	return out
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Generation: s.Generation,
		Nodes:      make([]NodeRuntime, len(s.Nodes)),
		Index:      maps.Clone(s.Index),
		Edges:      make(map[string]*EdgeRuntime, len(s.Edges)),
		Order:      slices.Clone(s.Order),
	}
	for i, n := range s.Nodes {
		c.Nodes[i] = n.clone()
	}
	for id, er := range s.Edges {
		cp := *er
		c.Edges[id] = &cp
	}
	if c.Index == nil {
		c.Index = map[string]int{}
	}
	return c
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Nodes: []NodeRuntime{},
		Index: map[string]int{},
		Edges: map[string]*EdgeRuntime{},
		Order: []string{},
	}
}
