package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/graph"
)

// diagram is an engine hosted by an in-memory document, the CLI's stand-in
// for a renderer session.
type diagram struct {
	source *graph.Document
	host   *flow.Document
	engine *flow.Engine
}

// loadDiagram reads the document at path and runs the first sync.
func (c *CLI) loadDiagram(ctx context.Context, path string, noCache bool) (*diagram, error) {
	doc, err := graph.ReadDocumentFile(path)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", path, err)
	}
	return c.newDiagram(ctx, doc, noCache)
}

func (c *CLI) newDiagram(ctx context.Context, doc *graph.Document, noCache bool) (*diagram, error) {
	l, err := c.newLayouter(noCache)
	if err != nil {
		return nil, err
	}

	nodes, edges := doc.Flow()
	host := flow.NewDocument(nodes, edges)
	host.Generation = doc.Generation

	e := flow.New(append(c.engineOptions(l), flow.WithHost(host))...)
	if _, err := host.Commit(ctx, e); err != nil {
		return nil, fmt.Errorf("initial sync: %w", err)
	}
	return &diagram{source: doc, host: host, engine: e}, nil
}

// stepFunc observes one applied event. rebuilt reports whether the host
// commit after it rebuilt the snapshot.
type stepFunc func(i int, ev flow.Event, rebuilt bool)

// apply dispatches events one at a time and commits the host after each,
// so host-side changes such as node deletion take effect before the next
// event. It returns the number of events applied.
func (d *diagram) apply(ctx context.Context, events []flow.Event, step stepFunc) (int, error) {
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := d.engine.Dispatch(ev); err != nil {
			return i, errors.Wrap(errors.GetCode(err), err, "event %d (%s)", i, ev.Type)
		}
		rebuilt, err := d.host.Commit(ctx, d.engine)
		if err != nil {
			return i, err
		}
		if step != nil {
			step(i, ev, rebuilt)
		}
	}
	return len(events), nil
}

// document returns the host inventory with live node positions.
func (d *diagram) document() *graph.Document {
	return graph.FromFlow(d.engine.Nodes(), d.host.Edges, d.host.Generation)
}

func (d *diagram) frame() graph.Frame {
	return graph.NewFrame(d.engine)
}

// readEvents returns the script to replay: the events of the document at
// path when given, otherwise the events embedded in fallback.
func readEvents(path string, fallback *graph.Document) ([]flow.Event, error) {
	if path == "" {
		return fallback.Events, nil
	}
	script, err := graph.ReadDocumentFile(path)
	if err != nil {
		return nil, fmt.Errorf("load events %s: %w", path, err)
	}
	return script.Events, nil
}
