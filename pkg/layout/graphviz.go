package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowchart/pkg/dag"
)

// pointsPerInch converts Graphviz inches to diagram units.
const pointsPerInch = 72.0

// plainFormat is the Graphviz text output listing node centres in inches.
const plainFormat graphviz.Format = "plain"

// Graphviz lays out the graph with the Graphviz dot engine.
type Graphviz struct {
	RankSep float64 // inches between columns
	NodeSep float64 // inches between boxes in a column
}

// NewGraphviz returns a Graphviz layout with the spacing used by the CLI.
func NewGraphviz() *Graphviz {
	return &Graphviz{RankSep: 1.0, NodeSep: 0.5}
}

// Name includes the separations so cached results are keyed by them.
func (l *Graphviz) Name() string {
	return fmt.Sprintf("graphviz(%g,%g)", l.RankSep, l.NodeSep)
}

// Layout renders g to Graphviz plain output and reads node positions back.
func (l *Graphviz) Layout(ctx context.Context, g *dag.DAG) (map[string]Position, error) {
	if g.NodeCount() == 0 {
		return map[string]Position{}, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(l.ToDOT(g)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, plainFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return parsePlain(buf.Bytes())
}

// ToDOT converts g to a left-to-right DOT graph of fixed-size boxes.
func (l *Graphviz) ToDOT(g *dag.DAG) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&buf, "  ranksep=%g;\n", l.RankSep)
	fmt.Fprintf(&buf, "  nodesep=%g;\n", l.NodeSep)
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, width=%.4f, height=%.4f, label=\"\"];\n",
		NodeWidth/pointsPerInch, NodeHeight/pointsPerInch)
	buf.WriteString("\n")

	for _, id := range g.NodeIDs() {
		fmt.Fprintf(&buf, "  %q;\n", id)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// parsePlain reads "graph" and "node" statements of Graphviz plain output.
// Node centres in inches with a bottom-left origin become top-left corners
// in diagram units with a top-left origin.
func parsePlain(data []byte) (map[string]Position, error) {
	var (
		height float64
		seen   bool
		result = make(map[string]Position)
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := splitPlain(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain: short graph line %q", sc.Text())
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("plain: graph height: %w", err)
			}
			height, seen = h, true
		case "node":
			if !seen {
				return nil, fmt.Errorf("plain: node before graph line")
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain: short node line %q", sc.Text())
			}
			x, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("plain: node %s x: %w", fields[1], err)
			}
			y, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("plain: node %s y: %w", fields[1], err)
			}
			result[fields[1]] = Position{
				X: x*pointsPerInch - NodeWidth/2,
				Y: (height-y)*pointsPerInch - NodeHeight/2,
			}
		case "stop":
			return result, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// splitPlain splits a plain output line on spaces, keeping double-quoted
// names together and unescaping \" inside them.
func splitPlain(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
		inTok  bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoted && c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == '"':
			quoted = !quoted
			inTok = true
		case c == ' ' && !quoted:
			if inTok {
				fields = append(fields, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteByte(c)
			inTok = true
		}
	}
	if inTok {
		fields = append(fields, cur.String())
	}
	return fields
}

var _ Layouter = (*Graphviz)(nil)
