package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
)

func sampleFrame() graph.Frame {
	return graph.Frame{
		Nodes: []graph.FrameNode{
			{
				ID: "a", Label: "A & B", Width: 200, Height: 100,
				Outputs: []flow.Point{{X: 200, Y: 0}},
			},
			{
				ID: "b", Label: "b", Position: flow.Point{X: 300}, Width: 200, Height: 100,
				Inputs: []flow.Point{{X: 300, Y: 0}}, Mounted: true,
			},
		},
		Edges: []graph.FrameEdge{
			{ID: "edge_a:0_b:0", Position: flow.Segment{X0: 200, X1: 300}},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleFrame(), WithLabels(), WithPorts()))

	for _, want := range []string{
		`viewBox="-20.0 -70.0 540.0 140.0"`,
		`id="node-a" class="node unmounted"`,
		`id="node-b" class="node"`,
		`id="edge_a:0_b:0" class="edge" d="M 200.00 0.00 C 250.00 0.00, 250.00 0.00, 300.00 0.00"`,
		`class="port output" data-node="a" data-port="0"`,
		`>A &amp; B</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %q in:\n%s", want, svg)
		}
	}
	if strings.Contains(svg, `id="pending-edge"`) {
		t.Error("pending edge drawn without a pending segment")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	f := sampleFrame()
	f.Pending = &flow.Segment{X0: 200, X1: 260, Y1: 40}

	svg := RenderSVG(f, WithPadding(0))
	if bytes.Contains(svg, []byte("<text")) || bytes.Contains(svg, []byte("<circle")) {
		t.Error("labels or ports drawn without options")
	}
	if !bytes.Contains(svg, []byte(`id="pending-edge" class="edge pending"`)) {
		t.Error("pending edge missing")
	}
	if !bytes.Contains(svg, []byte(`viewBox="0.0 -50.0 500.0 100.0"`)) {
		t.Errorf("viewBox wrong:\n%s", svg)
	}
}

func TestRenderSVGEmptyFrame(t *testing.T) {
	svg := RenderSVG(graph.Frame{})
	if !bytes.HasPrefix(svg, []byte("<svg")) || !bytes.HasSuffix(svg, []byte("</svg>\n")) {
		t.Errorf("malformed svg: %s", svg)
	}
}
