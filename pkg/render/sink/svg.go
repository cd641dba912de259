package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
)

const defaultPadding = 20.0

const flowCSS = `
    .node { fill: #ffffff; stroke: #333333; stroke-width: 1.5; }
    .node.unmounted { stroke-dasharray: 4 2; }
    .node-text { font-family: sans-serif; font-size: 14px; text-anchor: middle; dominant-baseline: middle; }
    .edge { fill: none; stroke: #555555; stroke-width: 2; }
    .edge.pending { stroke: #1f77b4; stroke-dasharray: 6 4; }
    .port { fill: #333333; }
    .port.input { fill: #2ca02c; }
    .port.output { fill: #d62728; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels  bool
	ports   bool
	padding float64
}

func WithLabels() SVGOption           { return func(r *svgRenderer) { r.labels = true } }
func WithPorts() SVGOption            { return func(r *svgRenderer) { r.ports = true } }
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = max(p, 0) } }

// RenderSVG draws f. The view box covers every node box, edge and port
// anchor plus the padding.
func RenderSVG(f graph.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	minX, minY, maxX, maxY := f.Bounds()
	minX, minY = minX-r.padding, minY-r.padding
	w, h := maxX-minX+r.padding, maxY-minY+r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", flowCSS)

	for _, e := range f.Edges {
		renderEdge(&buf, e.ID, e.Position, "edge")
	}
	for _, n := range f.Nodes {
		r.renderNode(&buf, n)
	}
	if f.Pending != nil {
		renderEdge(&buf, "pending-edge", *f.Pending, "edge pending")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{padding: defaultPadding}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, n graph.FrameNode) {
	tl, br := n.Box()
	class := "node"
	if !n.Mounted {
		class += " unmounted"
	}
	fmt.Fprintf(buf, `  <rect id="node-%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6"/>`+"\n",
		escapeXML(n.ID), class, tl.X, tl.Y, br.X-tl.X, br.Y-tl.Y)

	if r.ports {
		renderPorts(buf, n.ID, n.Inputs, "input")
		renderPorts(buf, n.ID, n.Outputs, "output")
	}
	if r.labels {
		fmt.Fprintf(buf, `  <text class="node-text" data-node="%s" x="%.2f" y="%.2f">%s</text>`+"\n",
			escapeXML(n.ID), (tl.X+br.X)/2, (tl.Y+br.Y)/2, escapeXML(n.Label))
	}
}

func renderPorts(buf *bytes.Buffer, nodeID string, anchors []flow.Point, side string) {
	for i, p := range anchors {
		fmt.Fprintf(buf, `  <circle class="port %s" data-node="%s" data-port="%d" cx="%.2f" cy="%.2f" r="4"/>`+"\n",
			side, escapeXML(nodeID), i, p.X, p.Y)
	}
}

// renderEdge draws s as a cubic curve leaving and entering horizontally.
func renderEdge(buf *bytes.Buffer, id string, s flow.Segment, class string) {
	dx := max(abs(s.X1-s.X0)/2, 30)
	fmt.Fprintf(buf, `  <path id="%s" class="%s" d="M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f"/>`+"\n",
		escapeXML(id), class, s.X0, s.Y0, s.X0+dx, s.Y0, s.X1-dx, s.Y1, s.X1, s.Y1)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
