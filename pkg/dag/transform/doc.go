// Package transform provides layering passes over a [dag.DAG].
//
// # Layer Assignment
//
// [AssignLayers] places every node in a row (a column in a left-to-right
// flow chart) using the longest-path rule: a node sits one row after the
// deepest of its predecessors, sources sit in row 0.
//
// # Cycles
//
// Flow charts may contain cycles. [BackEdges] finds a set of edges whose
// removal makes the graph acyclic (the back edges of a depth-first search
// started from the sources in insertion order). [AssignLayers] ignores those
// edges instead of deleting them, so the input graph is never mutated beyond
// its row assignments.
package transform
