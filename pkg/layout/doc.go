// Package layout is the automatic layered-layout collaborator of the flow
// chart engine.
//
// # Contract
//
// A [Layouter] receives a [dag.DAG] (node ids plus directed node pairs, port
// indices dropped) and returns the top-left corner of every node. All nodes
// are treated as uniform [NodeWidth] x [NodeHeight] boxes and flow runs left
// to right: predecessors sit in columns left of their successors.
//
// A Layouter may fail or omit nodes. Callers degrade: missing nodes are
// placed at the origin and a warning is logged (see flow.LayeredLayout).
//
// # Implementations
//
//   - [Layered]: pure Go longest-path columns, top-aligned rows in insertion
//     order. Deterministic and stable under appending disconnected nodes.
//   - [Graphviz]: the Graphviz dot engine via go-graphviz, rankdir=LR with
//     fixed-size boxes, read back from Graphviz "plain" output.
//   - [Cached]: decorator that memoises another Layouter in a cache.Cache.
//   - [Func]: adapter turning a function into a Layouter.
//
// [Run] wraps a layout call with observability hooks and timing.
package layout
