package flow

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// Host receives the engine's structural reports. Both callbacks get the
// complete new list, never a delta. Callbacks must not call back into the
// engine; such calls fail with errors.ErrCodeReentrant.
type Host interface {
	EdgesChanged(edges []Edge)
	NodesChanged(nodes []Node)
}

// HostFuncs adapts two functions to Host. Nil fields are skipped.
type HostFuncs struct {
	OnEdgesChange func([]Edge)
	OnNodesChange func([]Node)
}

func (h HostFuncs) EdgesChanged(edges []Edge) {
	if h.OnEdgesChange != nil {
		h.OnEdgesChange(edges)
	}
}

func (h HostFuncs) NodesChanged(nodes []Node) {
	if h.OnNodesChange != nil {
		h.OnNodesChange(nodes)
	}
}

// Op names the operation behind a Change.
type Op string

const (
	OpRebuild      Op = "rebuild"
	OpContent      Op = "content"
	OpMountNode    Op = "mount_node"
	OpPressNode    Op = "press_node"
	OpMoveNode     Op = "move_node"
	OpDeleteNode   Op = "delete_node"
	OpPressOutput  Op = "press_output"
	OpReleaseInput Op = "release_input"
	OpMoveMouse    Op = "move_mouse"
	OpReleaseMouse Op = "release_mouse"
	OpDeleteEdge   Op = "delete_edge"
)

// Change is delivered to subscribers after every operation that may have
// altered what a renderer shows.
type Change struct {
	Op         Op     `json:"op"`
	Generation uint64 `json:"generation"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLayouter sets the layout collaborator used on rebuilds.
func WithLayouter(l layout.Layouter) Option {
	return func(e *Engine) { e.layouter = l }
}

// WithLogger sets the logger for warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithHost sets the receiver of structural reports.
func WithHost(h Host) Option {
	return func(e *Engine) { e.host = h }
}

// WithNodeWidth sets the provisional node width used for output anchors
// until a node is mounted.
func WithNodeWidth(w float64) Option {
	return func(e *Engine) { e.nodeWidth = w }
}

// Engine holds the interactive state for one diagram. It is not safe for
// concurrent use.
type Engine struct {
	id        string
	logger    *log.Logger
	layouter  layout.Layouter
	host      Host
	nodeWidth float64

	nodes   []Node // host list as last received, positions not live
	snap    *Snapshot
	policy  Reconciler
	press   Point
	pending Pending

	busy    bool
	subs    map[int]func(Change)
	nextSub int
}

// New returns an engine with an empty snapshot. The first Sync always
// rebuilds.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:        uuid.NewString(),
		logger:    log.Default(),
		layouter:  layout.NewLayered(),
		host:      HostFuncs{},
		nodeWidth: layout.NodeWidth,
		snap:      emptySnapshot(),
		pending:   Idle{},
		subs:      map[int]func(Change){},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the engine's unique id.
func (e *Engine) ID() string { return e.id }

// Generation returns the generation of the current snapshot.
func (e *Engine) Generation() uint64 { return e.snap.Generation }

// Sync delivers the host's current lists. It rebuilds when the node count
// or the generation differs from the last rebuild and reports whether it
// did. Otherwise the stored host nodes are replaced and the runtime is left
// alone.
func (e *Engine) Sync(ctx context.Context, nodes []Node, edges []Edge, gen uint64) (bool, error) {
	if err := e.enter("Sync"); err != nil {
		return false, err
	}
	if e.policy.NeedsRebuild(len(nodes), gen) {
		e.rebuild(ctx, nodes, edges, gen)
		return true, nil
	}

	for _, n := range nodes {
		if _, ok := e.snap.Index[n.ID]; !ok {
			e.logger.Warn("node ids changed without a generation bump; runtime kept", "node", n.ID, "generation", gen)
			break
		}
	}
	e.nodes = slices.Clone(nodes)
	e.notify(OpContent)
	return false, nil
}

// Replace rebuilds from the given lists under the next generation number.
func (e *Engine) Replace(ctx context.Context, nodes []Node, edges []Edge) error {
	if err := e.enter("Replace"); err != nil {
		return err
	}
	e.rebuild(ctx, nodes, edges, e.policy.Generation()+1)
	return nil
}

func (e *Engine) rebuild(ctx context.Context, nodes []Node, edges []Edge, gen uint64) {
	start := time.Now()
	snap := Build(ctx, nodes, edges, BuildOptions{
		Layouter:  e.layouter,
		Logger:    e.logger,
		NodeWidth: e.nodeWidth,
	})
	snap.Generation = gen

	e.snap = snap
	e.nodes = slices.Clone(nodes)
	e.policy.Commit(len(nodes), gen)
	// Ordinals are per generation, so a half-drawn edge cannot survive.
	e.pending = Idle{}

	dur := time.Since(start)
	e.logger.Debug("rebuilt", "engine", e.id, "generation", gen, "nodes", len(snap.Nodes), "edges", len(snap.Order), "took", dur)
	observability.Engine().OnRebuild(ctx, e.id, len(snap.Nodes), len(snap.Order), dur)
	e.notify(OpRebuild)
}

// =============================================================================
// Queries
// =============================================================================

// Snapshot returns a deep copy of the current runtime.
func (e *Engine) Snapshot() *Snapshot { return e.snap.Clone() }

// Pending returns the in-progress edge state.
func (e *Engine) Pending() Pending { return e.pending }

// PendingSegment returns the line from the pending edge's source port to its
// free end, if an edge is being drawn.
func (e *Engine) PendingSegment() (Segment, bool) {
	d, ok := e.pending.(Drawing)
	if !ok {
		return Segment{}, false
	}
	n, ok := e.snap.Node(d.Source)
	if !ok {
		return Segment{}, false
	}
	start, ok := n.OutputAnchor(d.Output)
	if !ok {
		return Segment{}, false
	}
	return Segment{X0: start.X, Y0: start.Y, X1: d.Free.X, Y1: d.Free.Y}, true
}

// ActiveEdges returns the active edges in insertion order.
func (e *Engine) ActiveEdges() []Edge { return e.snap.ActiveEdges() }

// Nodes returns the host node list with each node's live position filled in.
func (e *Engine) Nodes() []Node {
	out := make([]Node, 0, len(e.nodes))
	for _, n := range e.nodes {
		if rt, ok := e.snap.Lookup(n.ID); ok {
			p := rt.Position
			n.Position = &p
		}
		out = append(out, n)
	}
	return out
}

// Subscribe registers fn to be called synchronously after every operation.
// The returned function removes the subscription. fn may read the engine but
// must not mutate it.
func (e *Engine) Subscribe(fn func(Change)) (cancel func()) {
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() { delete(e.subs, id) }
}

// =============================================================================
// Internal helpers
// =============================================================================

func (e *Engine) enter(op string) error {
	if e.busy {
		return errors.New(errors.ErrCodeReentrant, "%s called from inside a host callback", op)
	}
	return nil
}

// hold marks the engine busy for the duration of an outbound call and
// returns the function that restores the previous state. Nested holds leave
// an outer hold in place.
func (e *Engine) hold() func() {
	prev := e.busy
	e.busy = true
	return func() { e.busy = prev }
}

func (e *Engine) notify(op Op) {
	observability.Engine().OnGesture(e.id, string(op))
	if len(e.subs) == 0 {
		return
	}
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	change := Change{Op: op, Generation: e.snap.Generation}
	defer e.hold()()
	for _, id := range ids {
		if fn, ok := e.subs[id]; ok {
			fn(change)
		}
	}
}

func (e *Engine) reportEdges(edges []Edge) {
	defer e.hold()()
	e.host.EdgesChanged(edges)
	observability.Engine().OnEdgesReported(e.id, len(edges))
}

func (e *Engine) reportNodes(nodes []Node) {
	defer e.hold()()
	e.host.NodesChanged(nodes)
}

func (e *Engine) node(ordinal int) (*NodeRuntime, error) {
	n, ok := e.snap.Node(ordinal)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node ordinal %d out of range [0,%d)", ordinal, len(e.snap.Nodes))
	}
	return n, nil
}
