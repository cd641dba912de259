package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/dag"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/layout"
)

const edgePrefix = "edge_"

// EdgeID returns the canonical id edge_{source}:{output}_{target}:{input}.
func EdgeID(source string, output int, target string, input int) string {
	return edgePrefix + source + ":" + strconv.Itoa(output) + "_" + target + ":" + strconv.Itoa(input)
}

// ParseEdgeID splits a canonical edge id into its four components. Node ids
// must not contain ':' (see errors.ValidateNodeID) for this to be unambiguous.
func ParseEdgeID(id string) (source string, output int, target string, input int, err error) {
	fail := func(reason string) error {
		return errors.New(errors.ErrCodeInvalidEdgeID, "edge id %q: %s", id, reason)
	}

	rest, ok := strings.CutPrefix(id, edgePrefix)
	if !ok {
		return "", 0, "", 0, fail("missing " + edgePrefix + " prefix")
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return "", 0, "", 0, fail("want exactly two ':' separators")
	}
	outStr, target, ok := strings.Cut(parts[1], "_")
	if !ok {
		return "", 0, "", 0, fail("missing '_' between output and target")
	}
	if output, err = strconv.Atoi(outStr); err != nil || output < 0 {
		return "", 0, "", 0, fail("bad output index")
	}
	if input, err = strconv.Atoi(parts[2]); err != nil || input < 0 {
		return "", 0, "", 0, fail("bad input index")
	}
	source = parts[0]
	if source == "" || target == "" {
		return "", 0, "", 0, fail("empty node id")
	}
	return source, output, target, input, nil
}

// PortOffset returns the anchor of port index among total ports on one side
// of a node width units wide. Inputs sit on x = 0, outputs on x = width.
// Ports are PortSpacing apart and centred on y = 0 whatever the node height.
func PortOffset(width float64, total, index int, side Side) Point {
	x := 0.0
	if side == Output {
		x = width
	}
	return Point{
		X: x,
		Y: float64(index+1)*PortSpacing - float64(total+1)*PortSpacing/2,
	}
}

// portOffsets returns the provisional offsets for every port on one side.
func portOffsets(width float64, total int, side Side) []Point {
	out := make([]Point, total)
	for i := range out {
		out[i] = PortOffset(width, total, i, side)
	}
	return out
}

// LayeredLayout asks l for a left-to-right arrangement of nodes, using edges
// as node-to-node constraints with ports ignored. Nodes the layouter fails
// to place land on the origin with a warning; a failing layouter places
// every node there. It never returns an error.
func LayeredLayout(ctx context.Context, l layout.Layouter, nodes []Node, edges []Edge, logger *log.Logger) map[string]Point {
	if logger == nil {
		logger = log.Default()
	}

	g := dag.New()
	for _, n := range nodes {
		if err := g.AddNode(dag.Node{ID: n.ID}); err != nil {
			logger.Warn("node skipped by layout", "node", n.ID, "err", err)
		}
	}
	for _, e := range edges {
		// Dangling references are reported by Build.
		_ = g.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}

	result := make(map[string]Point, len(nodes))
	placed, err := layout.Run(ctx, l, g)
	if err != nil {
		logger.Warn("layout failed, placing nodes at origin", "engine", l.Name(), "err", err)
	}
	for _, n := range nodes {
		p, ok := placed[n.ID]
		if !ok && err == nil {
			logger.Warn("layout omitted node, placing at origin", "engine", l.Name(), "node", n.ID)
		}
		result[n.ID] = Point{X: p.X, Y: p.Y}
	}
	return result
}

// describe formats an edge for log messages.
func describe(e Edge) string {
	return fmt.Sprintf("%s:%d -> %s:%d", e.Source, e.SourceOutput, e.Target, e.TargetInput)
}
