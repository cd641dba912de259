// Package render groups the output sinks for flow chart frames.
//
// # Overview
//
// A frame ([graph.Frame]) is the renderer-facing view of one engine state:
// node boxes with absolute port anchors, placed edges and the edge still
// being drawn. Sinks turn a frame into a file format.
//
//   - SVG output (in [sink] subpackage)
//
// # SVG
//
//	frame := graph.NewFrame(engine)
//	svg := sink.RenderSVG(frame, sink.WithLabels(), sink.WithPorts())
//
// JSON output needs no sink; [graph.WriteFrame] encodes frames directly.
//
// [sink]: github.com/matzehuels/flowchart/pkg/render/sink
// [graph.Frame]: github.com/matzehuels/flowchart/pkg/graph
// [graph.WriteFrame]: github.com/matzehuels/flowchart/pkg/graph
package render
