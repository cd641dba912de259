// Package flow is the graph state and geometry engine behind an interactive
// flow chart: boxes with typed input and output ports joined by directed
// edges from an output port to an input port.
//
// # Overview
//
// The host application owns the node and edge inventory. The engine derives
// everything a renderer needs from it and keeps that geometry consistent
// while the user drags nodes, draws edges and deletes things:
//
//	host --(nodes, edges, generation)--> Engine.Sync
//	     --> Reconciler: rebuild (Build) or keep live state
//	renderer --gesture--> Engine --full lists--> Host
//	Engine --Change--> subscribers --> Engine.Snapshot()
//
// # Geometry
//
// Every node has a top-left [Point] position and one anchor offset per port.
// Provisional offsets come from [PortOffset]: ports are spaced [PortSpacing]
// apart and centred, inputs on the left edge and outputs on the right. When
// the renderer has measured a node it reports real offsets through
// [Engine.MountNode]. An edge's [Segment] runs from its source output anchor
// to its target input anchor.
//
// # Edge identity
//
// Edge ids are canonical: edge_{source}:{output}_{target}:{input} (see
// [EdgeID] and [ParseEdgeID]). The id doubles as the de-duplication key:
// drawing an edge that already exists removes it instead.
//
// # Reconciliation
//
// [Engine.Sync] rebuilds only when the node count changes or the host passes
// a different generation number. Hosts must bump the generation whenever the
// edge list logically changes. Content-only updates keep every position and
// endpoint untouched. Edge lists the engine itself reports do not need a
// bump: the engine already holds them.
//
// # Errors
//
// Dangling edge references, self-connections, duplicate draws and layout
// failures never fail an operation: they are resolved or logged. Handlers
// return errors only for malformed renderer input such as an out-of-range
// ordinal, and for calls made from inside a host callback.
//
// # Concurrency
//
// An Engine is single-threaded: callers deliver one event at a time. Each
// diagram owns its own Engine; nothing is shared between instances.
package flow
