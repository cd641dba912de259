package layout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/dag"
)

type countingLayouter struct {
	calls int
	err   error
}

func (c *countingLayouter) Name() string { return "counting" }

func (c *countingLayouter) Layout(ctx context.Context, g *dag.DAG) (map[string]Position, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[string]Position)
	for i, id := range g.NodeIDs() {
		out[id] = Position{X: float64(i), Y: 1}
	}
	return out, nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingLayouter{}
	c := NewCached(inner, fc, 0, log.New(io.Discard))

	g := graphOf(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	first, err := c.Layout(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Layout(ctx, graphOf(t, []string{"a", "b"}, [][2]string{{"a", "b"}}))
	if err != nil {
		t.Fatal(err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if first["b"] != second["b"] {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}

	// Different topology misses.
	if _, err := c.Layout(ctx, graphOf(t, []string{"a", "b"}, nil)); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &countingLayouter{err: errors.New("boom")}
	c := NewCached(inner, fc, 0, log.New(io.Discard))

	g := graphOf(t, []string{"a"}, nil)
	for range 2 {
		if _, err := c.Layout(ctx, g); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedName(t *testing.T) {
	c := NewCached(&countingLayouter{}, cache.NewNullCache(), 0, nil)
	if c.Name() != "counting" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestFunc(t *testing.T) {
	f := Func(func(ctx context.Context, g *dag.DAG) (map[string]Position, error) {
		return map[string]Position{"x": {X: 3}}, nil
	})
	pos, err := Run(context.Background(), f, dag.New())
	if err != nil || pos["x"].X != 3 {
		t.Errorf("Run(Func) = %v, %v", pos, err)
	}
}
