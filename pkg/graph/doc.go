// Package graph provides the serialization types for flow chart documents
// and rendered frames.
//
// This package defines the wire format used by document files, event
// scripts, API requests and responses, and the SVG renderer. It sits at the
// boundary between files or HTTP bodies and the in-memory engine:
//
//   - [Document]: nodes, edges and an optional event script
//   - [Frame]: what a renderer draws for one engine state
//   - pkg/flow: the engine these types convert to and from
//
// # Document Format
//
// Documents are JSON or TOML; the file extension selects the codec:
//
//	[[nodes]]
//	id = "load"
//	label = "Load CSV"
//	outputs = 2
//
//	[[nodes]]
//	id = "store"
//	inputs = 1
//	position = { x = 400, y = 0 }
//
//	[[edges]]
//	from = "load"
//	output = 0
//	to = "store"
//	input = 0
//
// Edge ids are optional; [Document.Validate] fills in the canonical id and
// rejects ids that disagree with the endpoints.
//
// # Event Scripts
//
// A document may carry [flow.Event] values under "events". The replay
// command and the HTTP API apply them in order.
//
// Common operations:
//
//	doc, _ := graph.ReadDocumentFile("pipeline.toml")
//	nodes, edges := doc.Flow()
//	graph.WriteDocumentFile(doc, "out.json")
//	frame := graph.NewFrame(engine)
package graph
