// Package sink provides output format renderers for flow chart frames.
//
// # Overview
//
// A "sink" transforms a captured [graph.Frame] into a final output format.
// [RenderSVG] draws node boxes with their port anchors, placed edges as
// horizontal cubic curves and the pending edge as a dashed line:
//
//	frame := graph.NewFrame(engine)
//	svg := sink.RenderSVG(frame,
//	    sink.WithLabels(),
//	    sink.WithPadding(40),
//	)
//
// # SVG Options
//
//   - [WithLabels]: Draw node labels
//   - [WithPadding]: Space around the drawing, in diagram units
//   - [WithPorts]: Draw a dot on every port anchor
//
// Element ids follow node and edge ids ("node-{id}", "{edge id}") so a
// browser host can map pointer events back to engine events.
package sink
