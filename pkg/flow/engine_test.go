package flow

import (
	"context"
	"slices"
	"testing"

	ferrors "github.com/matzehuels/flowchart/pkg/errors"
)

// recorder is a Host that records every report in call order.
type recorder struct {
	calls []string
	edges []Edge
	nodes []Node
}

func (r *recorder) EdgesChanged(edges []Edge) {
	r.calls = append(r.calls, "edges")
	r.edges = edges
}

func (r *recorder) NodesChanged(nodes []Node) {
	r.calls = append(r.calls, "nodes")
	r.nodes = nodes
}

func edgeIDs(edges []Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func newEngine(t *testing.T, nodes []Node, edges []Edge) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(WithHost(rec), WithLogger(quiet()))
	if rebuilt, err := e.Sync(context.Background(), nodes, edges, 0); err != nil || !rebuilt {
		t.Fatalf("initial Sync = %v, %v", rebuilt, err)
	}
	return e, rec
}

func TestMoveNodeIdempotent(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), sampleEdges())

	e.PressNode(15, 5)
	if err := e.MoveNode(0, 100, 50); err != nil {
		t.Fatal(err)
	}
	first := e.Snapshot()
	if err := e.MoveNode(0, 100, 50); err != nil {
		t.Fatal(err)
	}
	second := e.Snapshot()

	if got := first.Nodes[0].Position; got != (Point{85, 45}) {
		t.Errorf("position = %+v, want {85 45}", got)
	}
	if second.Nodes[0].Position != first.Nodes[0].Position {
		t.Error("position drifted on repeated move")
	}
	a, b := first.Edges["edge_n1:0_n2:0"], second.Edges["edge_n1:0_n2:0"]
	if a.Position != b.Position {
		t.Errorf("endpoints drifted: %+v vs %+v", a.Position, b.Position)
	}
	if want := (Segment{285, 35, 280, 0}); a.Position != want {
		t.Errorf("segment = %+v, want %+v", a.Position, want)
	}
}

func TestMoveNodeTargetEnd(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), sampleEdges())
	if err := e.MoveNode(1, 400, 300); err != nil {
		t.Fatal(err)
	}
	seg := e.Snapshot().Edges["edge_n1:0_n2:0"].Position
	if seg.Start() != (Point{200, -10}) || seg.End() != (Point{400, 300}) {
		t.Errorf("segment = %+v", seg)
	}
}

func TestMoveNodeOutOfRange(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), nil)
	if err := e.MoveNode(7, 0, 0); !ferrors.Is(err, ferrors.ErrCodeNodeNotFound) {
		t.Errorf("err = %v, want NODE_NOT_FOUND", err)
	}
}

func TestContentOnlySyncKeepsGeometry(t *testing.T) {
	nodes, edges := sampleNodes(), sampleEdges()
	e, _ := newEngine(t, nodes, edges)
	_ = e.MoveNode(2, 37.5, 91.25)
	before := e.Snapshot()

	changed := slices.Clone(nodes)
	changed[1].Payload = map[string]string{"label": "renamed"}
	rebuilt, err := e.Sync(context.Background(), changed, edges, 0)
	if err != nil || rebuilt {
		t.Fatalf("Sync = %v, %v; want no rebuild", rebuilt, err)
	}
	after := e.Snapshot()

	for i := range before.Nodes {
		if before.Nodes[i].Position != after.Nodes[i].Position {
			t.Errorf("node %d moved: %+v -> %+v", i, before.Nodes[i].Position, after.Nodes[i].Position)
		}
	}
	for id, er := range before.Edges {
		if after.Edges[id].Position != er.Position {
			t.Errorf("edge %s endpoints changed", id)
		}
	}
	if got := e.Nodes()[1].Payload; got == nil {
		t.Error("payload not stored")
	}
}

func TestDrawEdgeAndToggle(t *testing.T) {
	e, rec := newEngine(t, sampleNodes(), sampleEdges())

	if err := e.PressOutput(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.ReleaseInput(2, 0); err != nil {
		t.Fatal(err)
	}
	if _, idle := e.Pending().(Idle); !idle {
		t.Errorf("pending = %#v after release", e.Pending())
	}
	want := []string{"edge_n1:0_n2:0", "edge_n1:1_n3:0"}
	if got := edgeIDs(rec.edges); !slices.Equal(got, want) {
		t.Fatalf("reported %v, want %v", got, want)
	}
	s := e.Snapshot()
	if er := s.Edges["edge_n1:1_n3:0"]; !er.Placed || er.Position != (Segment{200, 10, 0, 130}) {
		t.Errorf("new edge = %+v", er)
	}
	if !slices.Contains(s.Nodes[2].EdgesIn, "edge_n1:1_n3:0") {
		t.Error("new edge missing from target adjacency")
	}

	before := len(e.ActiveEdges())
	_ = e.PressOutput(0, 1)
	_ = e.ReleaseInput(2, 0)
	if got := len(e.ActiveEdges()); got != before-1 {
		t.Errorf("active edges = %d, want %d", got, before-1)
	}
	if got := edgeIDs(rec.edges); !slices.Equal(got, []string{"edge_n1:0_n2:0"}) {
		t.Errorf("reported %v after toggle", got)
	}
	if slices.Contains(e.Snapshot().Nodes[0].EdgesOut, "edge_n1:1_n3:0") {
		t.Error("toggled edge still in source adjacency")
	}
}

func TestReleaseOnSourceNodeIsNoop(t *testing.T) {
	e, rec := newEngine(t, sampleNodes(), sampleEdges())
	_ = e.PressOutput(2, 0)
	if err := e.ReleaseInput(2, 1); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("host called: %v", rec.calls)
	}
	if _, idle := e.Pending().(Idle); !idle {
		t.Error("pending edge not cleared")
	}
}

func TestReleaseWithoutPending(t *testing.T) {
	e, rec := newEngine(t, sampleNodes(), nil)
	if err := e.ReleaseInput(1, 0); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("host called: %v", rec.calls)
	}
}

func TestPendingLifecycle(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), sampleEdges())

	e.MoveMouse(5, 5)
	if _, idle := e.Pending().(Idle); !idle {
		t.Fatal("MoveMouse started a pending edge")
	}

	if err := e.PressOutput(1, 0); err != nil {
		t.Fatal(err)
	}
	d, ok := e.Pending().(Drawing)
	if !ok || d.Free != (Point{480, 0}) {
		t.Fatalf("pending = %#v", e.Pending())
	}

	e.MoveMouse(600, 42)
	seg, ok := e.PendingSegment()
	if !ok || seg != (Segment{480, 0, 600, 42}) {
		t.Errorf("pending segment = %+v, %v", seg, ok)
	}

	e.ReleaseMouse()
	if _, idle := e.Pending().(Idle); !idle {
		t.Error("ReleaseMouse kept the pending edge")
	}
	if _, ok := e.PendingSegment(); ok {
		t.Error("pending segment after cancel")
	}
}

func TestPressOutputInvalidPort(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), nil)
	if err := e.PressOutput(1, 1); !ferrors.Is(err, ferrors.ErrCodeInvalidPort) {
		t.Errorf("err = %v, want INVALID_PORT", err)
	}
}

func TestDeleteNodeCascade(t *testing.T) {
	edges := []Edge{
		NewEdge("n1", 0, "n2", 0),
		NewEdge("n1", 1, "n3", 0),
		NewEdge("n3", 0, "n2", 0),
		NewEdge("n2", 0, "n3", 1),
	}
	e, rec := newEngine(t, sampleNodes(), edges)

	if err := e.DeleteNode("n3"); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.calls, []string{"edges", "nodes"}) {
		t.Errorf("calls = %v, want edges then nodes", rec.calls)
	}
	if got := edgeIDs(rec.edges); !slices.Equal(got, []string{"edge_n1:0_n2:0"}) {
		t.Errorf("edges = %v", got)
	}
	for _, n := range rec.nodes {
		if n.ID == "n3" {
			t.Error("deleted node reported")
		}
	}
	if len(rec.nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(rec.nodes))
	}
	// Local state waits for the host.
	if len(e.Snapshot().Nodes) != 3 {
		t.Error("engine rebuilt without a host update")
	}
}

func TestDeleteUnknownNode(t *testing.T) {
	e, rec := newEngine(t, sampleNodes(), nil)
	if err := e.DeleteNode("nope"); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("host called: %v", rec.calls)
	}
}

func TestDeleteEdge(t *testing.T) {
	edges := []Edge{NewEdge("n1", 0, "n2", 0), NewEdge("n1", 1, "n3", 1)}
	e, rec := newEngine(t, sampleNodes(), edges)

	if err := e.DeleteEdge("edge_n1:0_n2:0"); err != nil {
		t.Fatal(err)
	}
	if got := edgeIDs(rec.edges); !slices.Equal(got, []string{"edge_n1:1_n3:1"}) {
		t.Errorf("reported %v", got)
	}
	s := e.Snapshot()
	if s.Edges["edge_n1:0_n2:0"].Active {
		t.Error("deleted edge still active")
	}
	if len(s.Nodes[1].EdgesIn) != 0 {
		t.Errorf("n2.EdgesIn = %v", s.Nodes[1].EdgesIn)
	}

	rec.calls = nil
	if err := e.DeleteEdge("edge_n1:0_n2:0"); err != nil || len(rec.calls) != 0 {
		t.Errorf("second delete: err=%v calls=%v", err, rec.calls)
	}

	// Moving must not write to the inactive edge.
	stale := s.Edges["edge_n1:0_n2:0"].Position
	_ = e.MoveNode(0, 999, 999)
	if got := e.Snapshot().Edges["edge_n1:0_n2:0"].Position; got != stale {
		t.Errorf("inactive edge moved: %+v", got)
	}
}

func TestMountNode(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), sampleEdges())

	err := e.MountNode(0, []Point{{0, 40}}, []Point{{160, 30}, {160, 50}})
	if err != nil {
		t.Fatal(err)
	}
	s := e.Snapshot()
	if !s.Nodes[0].Mounted {
		t.Error("node not marked mounted")
	}
	if seg := s.Edges["edge_n1:0_n2:0"].Position; seg != (Segment{160, 30, 280, 0}) {
		t.Errorf("segment = %+v", seg)
	}

	err = e.MountNode(0, nil, []Point{{1, 1}, {1, 1}})
	if !ferrors.Is(err, ferrors.ErrCodeInvalidPort) {
		t.Errorf("err = %v, want INVALID_PORT", err)
	}
}

func TestMountSkipsDanglingEdge(t *testing.T) {
	edges := []Edge{NewEdge("n1", 0, "ghost", 0)}
	e, _ := newEngine(t, sampleNodes(), edges)
	if err := e.MountNode(0, []Point{{0, 0}}, []Point{{1, 2}, {3, 4}}); err != nil {
		t.Fatal(err)
	}
	if er := e.Snapshot().Edges["edge_n1:0_ghost:0"]; er.Placed || er.Position != (Segment{}) {
		t.Errorf("dangling edge gained geometry: %+v", er)
	}
}

func TestRebuildResetsPendingAndMount(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), nil)
	_ = e.MountNode(1, []Point{{0, 1}}, []Point{{2, 3}})
	_ = e.PressOutput(1, 0)

	if err := e.Replace(context.Background(), sampleNodes(), nil); err != nil {
		t.Fatal(err)
	}
	if _, idle := e.Pending().(Idle); !idle {
		t.Error("pending edge survived rebuild")
	}
	if e.Snapshot().Nodes[1].Mounted {
		t.Error("measured offsets survived rebuild")
	}
	if e.Generation() != 1 {
		t.Errorf("generation = %d, want 1", e.Generation())
	}
}

func TestReentrantCallRejected(t *testing.T) {
	var inner error
	var e *Engine
	host := HostFuncs{OnEdgesChange: func([]Edge) {
		_, inner = e.Sync(context.Background(), nil, nil, 9)
	}}
	e = New(WithHost(host), WithLogger(quiet()))
	_, _ = e.Sync(context.Background(), sampleNodes(), sampleEdges(), 0)

	if err := e.DeleteEdge("edge_n1:0_n2:0"); err != nil {
		t.Fatal(err)
	}
	if !ferrors.Is(inner, ferrors.ErrCodeReentrant) {
		t.Errorf("inner err = %v, want REENTRANT_CALL", inner)
	}
	if len(e.Snapshot().Nodes) != 3 {
		t.Error("re-entrant Sync changed state")
	}
}

func TestReentrantGuardHeldThroughNestedCalls(t *testing.T) {
	var e *Engine
	var errs []error
	host := HostFuncs{OnEdgesChange: func([]Edge) {
		errs = append(errs,
			e.PressNode(0, 0),
			e.MoveMouse(1, 1),
			e.ReleaseMouse(),
			e.MoveNode(0, 1, 1),
		)
	}}
	e = New(WithHost(host), WithLogger(quiet()))
	_, _ = e.Sync(context.Background(), sampleNodes(), sampleEdges(), 0)
	cancel := e.Subscribe(func(Change) {})
	defer cancel()
	before := e.Snapshot().Nodes[0].Position

	if err := e.DeleteEdge("edge_n1:0_n2:0"); err != nil {
		t.Fatal(err)
	}
	if len(errs) != 4 {
		t.Fatalf("callback errors = %v", errs)
	}
	for i, err := range errs {
		if !ferrors.Is(err, ferrors.ErrCodeReentrant) {
			t.Errorf("call %d err = %v, want REENTRANT_CALL", i, err)
		}
	}
	if got := e.Snapshot().Nodes[0].Position; got != before {
		t.Errorf("node moved from inside callback: %+v", got)
	}
	if err := e.PressNode(0, 0); err != nil {
		t.Errorf("guard not released after callback: %v", err)
	}
}

func TestReleaseInputTogglesRenamedHostEdge(t *testing.T) {
	edges := []Edge{{ID: "e1", Source: "n1", SourceOutput: 0, Target: "n2", TargetInput: 0}}
	e, rec := newEngine(t, sampleNodes(), edges)

	_ = e.PressOutput(0, 0)
	if err := e.ReleaseInput(1, 0); err != nil {
		t.Fatal(err)
	}
	if len(rec.edges) != 0 || len(e.ActiveEdges()) != 0 {
		t.Errorf("active after redrawing existing edge = %v", edgeIDs(e.ActiveEdges()))
	}
}

func TestSubscribe(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), nil)

	var ops []Op
	cancel := e.Subscribe(func(c Change) {
		ops = append(ops, c.Op)
		_ = e.Snapshot()
	})
	e.PressNode(1, 1)
	_ = e.MoveNode(0, 10, 10)
	cancel()
	_ = e.MoveNode(0, 20, 20)

	if !slices.Equal(ops, []Op{OpPressNode, OpMoveNode}) {
		t.Errorf("ops = %v", ops)
	}
}

func TestNodesCarryLivePositions(t *testing.T) {
	e, _ := newEngine(t, sampleNodes(), nil)
	_ = e.MoveNode(2, 10, 20)
	nodes := e.Nodes()
	if nodes[2].Position == nil || *nodes[2].Position != (Point{10, 20}) {
		t.Errorf("node position = %v", nodes[2].Position)
	}
	if e.ID() == "" || e.ID() == New().ID() {
		t.Error("engine ids not unique")
	}
}
