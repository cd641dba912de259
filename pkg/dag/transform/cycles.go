package transform

import "github.com/matzehuels/flowchart/pkg/dag"

// BackEdges returns the edges that close a directed cycle, as found by a
// depth-first search visiting sources first and then remaining nodes, both
// in insertion order. The result is deterministic for a given graph.
func BackEdges(g *dag.DAG) map[dag.Edge]bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	back := make(map[dag.Edge]bool)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back[dag.Edge{From: node, To: child}] = true
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	return back
}
