package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantErr error
	}{
		{name: "valid", nodes: []Node{{ID: "a"}, {ID: "b"}}},
		{name: "empty id", nodes: []Node{{ID: ""}}, wantErr: ErrInvalidNodeID},
		{name: "duplicate", nodes: []Node{{ID: "a"}, {ID: "a"}}, wantErr: ErrDuplicateNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			var err error
			for _, n := range tt.nodes {
				if err = g.AddNode(n); err != nil {
					break
				}
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	if err := g.AddEdge(Edge{From: "x", To: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: error = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: error = %v", err)
	}

	if err := g.AddEdge(Edge{From: "a", To: "b"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "b"}); err != nil {
		t.Fatalf("AddEdge duplicate: %v", err)
	}

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1 (duplicate pairs collapse)", g.EdgeCount())
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Children(a) = %v, want [b]", got)
	}
	if got := g.Parents("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parents(b) = %v, want [a]", got)
	}
	if g.InDegree("b") != 1 || g.OutDegree("a") != 1 {
		t.Errorf("degrees: in(b)=%d out(a)=%d", g.InDegree("b"), g.OutDegree("a"))
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"z", "a", "m", "b"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}

	if got := g.NodeIDs(); !slices.Equal(got, ids) {
		t.Errorf("NodeIDs() = %v, want %v", got, ids)
	}

	var got []string
	for _, n := range g.Nodes() {
		got = append(got, n.ID)
	}
	if !slices.Equal(got, ids) {
		t.Errorf("Nodes() order = %v, want %v", got, ids)
	}
}

func TestRows(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	g.SetRows(map[string]int{"b": 1, "c": 1, "missing": 4})

	if got := g.RowIDs(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("RowIDs() = %v, want [0 1]", got)
	}
	row := g.NodesInRow(1)
	if len(row) != 2 || row[0].ID != "b" || row[1].ID != "c" {
		t.Errorf("NodesInRow(1) = %v", row)
	}
}

func TestSources(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	var got []string
	for _, n := range g.Sources() {
		got = append(got, n.ID)
	}
	if !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Sources() = %v, want [a c]", got)
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  bool
	}{
		{"empty", nil, false},
		{"chain", []Edge{{"a", "b"}, {"b", "c"}}, false},
		{"diamond", []Edge{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, false},
		{"loop", []Edge{{"a", "b"}, {"b", "c"}, {"c", "a"}}, true},
		{"self", []Edge{{"d", "d"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			for _, id := range []string{"a", "b", "c", "d"} {
				_ = g.AddNode(Node{ID: id})
			}
			for _, e := range tt.edges {
				_ = g.AddEdge(e)
			}
			if got := g.HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}
