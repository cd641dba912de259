package transform

import "github.com/matzehuels/flowchart/pkg/dag"

// AssignLayers assigns nodes to rows based on their depth in the graph.
//
// AssignLayers uses a longest-path algorithm via topological sort (Kahn's
// algorithm). Each node is placed at one plus the maximum row of any of its
// predecessors, so that:
//   - Source nodes (no incoming edges) are at row 0
//   - All predecessors are strictly before their successors
//   - Nodes without any edges stay in row 0
//
// Back edges (see [BackEdges]) are ignored, which makes the traversal total
// on cyclic graphs. Existing row assignments are overwritten.
//
// Time complexity is O(V + E).
func AssignLayers(g *dag.DAG) {
	back := BackEdges(g)
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := 0
		for _, p := range g.Parents(n.ID) {
			if !back[dag.Edge{From: p, To: n.ID}] {
				degree++
			}
		}
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if back[dag.Edge{From: curr, To: child}] {
				continue
			}
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
