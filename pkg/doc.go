// Package pkg provides the core libraries for Flowchart, an interactive
// node-and-port flow chart engine.
//
// # Overview
//
// Flowchart keeps the structural state of a diagram of boxes with numbered
// input and output ports: where every box sits, where each port anchor lies
// and which connections are live. A renderer feeds it pointer gestures; a
// host owns the node and edge inventory and is told whenever the engine
// changes it. The pkg directory is organized into these areas:
//
//  1. [flow] - The engine: geometry, snapshots, gestures, reconciliation
//  2. [layout] - Layout collaborators (pure Go layered, Graphviz, cached)
//  3. [graph] - Wire format for documents, event scripts and frames
//  4. [render] - Frame sinks (SVG)
//  5. [session] - In-memory diagram sessions for the HTTP host
//
// # Architecture
//
// The data flow of one diagram:
//
//	Host document (nodes, edges, generation)
//	         ↓
//	    [flow.Engine.Sync] (rebuild when the reconciliation policy says so)
//	         ↓
//	    [layout] package (positions for nodes that have none)
//	         ↓
//	    [flow.Snapshot] (ports, anchors, edge segments)
//	         ↓
//	    gestures → host callbacks → next Sync
//	         ↓
//	    [graph.Frame] → SVG/JSON
//
// # Quick Start
//
//	doc, _ := graph.ReadDocumentFile("pipeline.toml")
//	nodes, edges := doc.Flow()
//
//	host := flow.NewDocument(nodes, edges)
//	engine := flow.New(flow.WithHost(host), flow.WithLayouter(layout.NewLayered()))
//	host.Commit(ctx, engine)
//
//	engine.PressOutput(0, 0)
//	engine.MoveMouse(420, 80)
//	engine.ReleaseInput(1, 0)
//	host.Commit(ctx, engine)
//
//	svg := sink.RenderSVG(graph.NewFrame(engine), sink.WithLabels())
//
// # Main Packages
//
// [flow] - Snapshot builder, interactive engine, pending edge state and the
// generation-counter reconciliation policy. [flow.Document] is a ready-made
// in-memory host.
//
// [layout] - The [layout.Layouter] interface with a deterministic layered
// implementation, a Graphviz dot implementation and a decorator that caches
// results by topology.
//
// [dag] - Node-to-node graph handed to layouters; ports are dropped.
//
// [dag/transform] - Longest-path layer assignment used by the layered layout.
//
// [cache] - Byte cache backends (file, null) and topology hashing.
//
// [graph] - Documents (JSON or TOML), gesture scripts and renderer frames.
//
// [render/sink] - SVG rendering of frames.
//
// [session] - UUID-addressed engine sessions with TTL expiry.
//
// [errors] - Coded errors shared by the engine, loaders and HTTP host.
//
// [observability] - No-op-by-default hooks for layout, cache and engine events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/flow/...     # Specific package
//	go test -run Example       # Examples only
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/flow
// [flow.Engine.Sync]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/flow#Engine.Sync
// [flow.Snapshot]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/flow#Snapshot
// [flow.Document]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/flow#Document
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/layout
// [layout.Layouter]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/layout#Layouter
// [dag]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/dag/transform
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/cache
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/graph
// [graph.Frame]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/graph#Frame
// [render]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/render/sink
// [session]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/observability
package pkg
