// Package dag provides the node-to-node directed graph handed to the layout
// collaborator.
//
// # Overview
//
// Flow chart edges connect a specific output port to a specific input port.
// Layout does not care about ports: it only needs to know which boxes feed
// which. This package holds that reduced view, built from the host's node
// list and the set of distinct (source, target) node pairs.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "load"})
//	g.AddNode(dag.Node{ID: "filter"})
//	g.AddEdge(dag.Edge{From: "load", To: "filter"})
//
// Nodes keep insertion order, so every traversal ([DAG.Nodes],
// [DAG.NodesInRow], [DAG.Sources]) is deterministic. Layouts built on top of
// it are stable under appending a disconnected node.
//
// # Rows
//
// [Node.Row] is the layer a node occupies once a layering algorithm (see
// package transform) has run. In a left-to-right flow chart a row is a
// column on screen.
//
// # Cycles
//
// Users can draw a cycle. The graph accepts it; [DAG.HasCycle] reports it
// and layering algorithms degrade instead of failing.
//
// # Concurrency
//
// A DAG is not safe for concurrent use without external synchronization.
package dag
