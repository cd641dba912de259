package flow

import (
	"slices"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// MountNode records the measured port offsets of the node at ordinal and
// re-anchors its placed incident edges. Offset counts must match the node's
// port counts. The far end of each edge keeps its current position.
func (e *Engine) MountNode(ordinal int, inputs, outputs []Point) error {
	if err := e.enter("MountNode"); err != nil {
		return err
	}
	n, err := e.node(ordinal)
	if err != nil {
		return err
	}
	if len(inputs) != len(n.Inputs) || len(outputs) != len(n.Outputs) {
		return errors.New(errors.ErrCodeInvalidPort,
			"node %q: measured %d inputs and %d outputs, declared %d and %d",
			n.ID, len(inputs), len(outputs), len(n.Inputs), len(n.Outputs))
	}

	copy(n.Inputs, inputs)
	copy(n.Outputs, outputs)
	n.Mounted = true

	for _, id := range n.EdgesOut {
		er := e.snap.Edges[id]
		if er == nil || !er.Active || !er.Placed {
			continue
		}
		p, _ := n.OutputAnchor(er.SourceOutput)
		er.Position.X0, er.Position.Y0 = p.X, p.Y
	}
	for _, id := range n.EdgesIn {
		er := e.snap.Edges[id]
		// Unplaced edges get no geometry. No endpoint defaults to the
		// origin.
		if er == nil || !er.Active || !er.Placed {
			continue
		}
		p, _ := n.InputAnchor(er.TargetInput)
		er.Position.X1, er.Position.Y1 = p.X, p.Y
	}
	e.notify(OpMountNode)
	return nil
}

// PressNode records the pointer offset inside a node at the start of a drag.
// The offset is global, not per node.
func (e *Engine) PressNode(dx, dy float64) error {
	if err := e.enter("PressNode"); err != nil {
		return err
	}
	e.press = Point{X: dx, Y: dy}
	e.notify(OpPressNode)
	return nil
}

// MoveNode places the node at ordinal so that the press offset stays under
// the pointer at (px, py) and re-anchors its placed incident edges.
// Repeating the call with the same arguments changes nothing.
func (e *Engine) MoveNode(ordinal int, px, py float64) error {
	if err := e.enter("MoveNode"); err != nil {
		return err
	}
	n, err := e.node(ordinal)
	if err != nil {
		return err
	}
	n.Position = Point{X: px, Y: py}.Sub(e.press)

	for _, id := range n.EdgesOut {
		if er := e.snap.Edges[id]; er != nil && er.Active && er.Placed {
			p, _ := n.OutputAnchor(er.SourceOutput)
			er.Position.X0, er.Position.Y0 = p.X, p.Y
		}
	}
	for _, id := range n.EdgesIn {
		if er := e.snap.Edges[id]; er != nil && er.Active && er.Placed {
			p, _ := n.InputAnchor(er.TargetInput)
			er.Position.X1, er.Position.Y1 = p.X, p.Y
		}
	}
	e.notify(OpMoveNode)
	return nil
}

// DeleteNode reports the active edge list without the node's incident edges,
// then the node list without the node. Local state is untouched; the host's
// next Sync rebuilds because the node count dropped. Unknown ids are
// ignored.
func (e *Engine) DeleteNode(id string) error {
	if err := e.enter("DeleteNode"); err != nil {
		return err
	}
	if _, ok := e.snap.Index[id]; !ok {
		e.logger.Debug("delete of unknown node ignored", "node", id)
		return nil
	}

	edges := slices.DeleteFunc(e.snap.ActiveEdges(), func(ed Edge) bool {
		return ed.Source == id || ed.Target == id
	})
	nodes := slices.DeleteFunc(e.Nodes(), func(n Node) bool { return n.ID == id })

	e.reportEdges(edges)
	e.reportNodes(nodes)

	e.notify(OpDeleteNode)
	return nil
}

// PressOutput starts drawing an edge from output port output of the node at
// ordinal. The free end starts on the port itself.
func (e *Engine) PressOutput(ordinal, output int) error {
	if err := e.enter("PressOutput"); err != nil {
		return err
	}
	n, err := e.node(ordinal)
	if err != nil {
		return err
	}
	anchor, ok := n.OutputAnchor(output)
	if !ok {
		return errors.New(errors.ErrCodeInvalidPort, "node %q has no output %d", n.ID, output)
	}
	e.pending = Drawing{Source: ordinal, Output: output, Free: anchor}
	e.notify(OpPressOutput)
	return nil
}

// ReleaseInput completes a pending edge on input port input of the node at
// ordinal and always clears the pending edge. Releasing on the source node
// does nothing. Releasing where the same edge already exists removes it.
// Otherwise the edge is created. Either way the host receives the full
// active edge list.
func (e *Engine) ReleaseInput(ordinal, input int) error {
	if err := e.enter("ReleaseInput"); err != nil {
		return err
	}
	d, drawing := e.pending.(Drawing)
	if !drawing {
		return nil
	}
	e.pending = Idle{}

	tgt, err := e.node(ordinal)
	if err != nil {
		return err
	}
	if _, ok := tgt.InputAnchor(input); !ok {
		return errors.New(errors.ErrCodeInvalidPort, "node %q has no input %d", tgt.ID, input)
	}
	if d.Source == ordinal {
		e.logger.Debug("self-connection ignored", "node", tgt.ID)
		e.notify(OpReleaseInput)
		return nil
	}

	src := &e.snap.Nodes[d.Source]
	id := EdgeID(src.ID, d.Output, tgt.ID, input)
	if slices.Contains(tgt.EdgesIn, id) {
		e.removeEdge(id)
		e.reportEdges(e.snap.ActiveEdges())
		e.notify(OpReleaseInput)
		return nil
	}

	er := &EdgeRuntime{Edge: NewEdge(src.ID, d.Output, tgt.ID, input), Active: true}
	e.snap.place(er)
	// The runtime entry must exist before any adjacency list names it.
	if _, seen := e.snap.Edges[id]; !seen {
		e.snap.Order = append(e.snap.Order, id)
	}
	e.snap.Edges[id] = er
	src.EdgesOut = append(src.EdgesOut, id)
	tgt.EdgesIn = append(tgt.EdgesIn, id)

	e.reportEdges(e.snap.ActiveEdges())
	e.notify(OpReleaseInput)
	return nil
}

// MoveMouse moves the free end of a pending edge. It does nothing when no
// edge is being drawn.
func (e *Engine) MoveMouse(x, y float64) error {
	if err := e.enter("MoveMouse"); err != nil {
		return err
	}
	d, ok := e.pending.(Drawing)
	if !ok {
		return nil
	}
	d.Free = Point{X: x, Y: y}
	e.pending = d
	e.notify(OpMoveMouse)
	return nil
}

// ReleaseMouse abandons a pending edge.
func (e *Engine) ReleaseMouse() error {
	if err := e.enter("ReleaseMouse"); err != nil {
		return err
	}
	if _, ok := e.pending.(Drawing); !ok {
		return nil
	}
	e.pending = Idle{}
	e.notify(OpReleaseMouse)
	return nil
}

// DeleteEdge deactivates an edge and reports the remaining active edges.
// Unknown or already deleted ids are ignored.
func (e *Engine) DeleteEdge(id string) error {
	if err := e.enter("DeleteEdge"); err != nil {
		return err
	}
	if er, ok := e.snap.Edges[id]; !ok || !er.Active {
		e.logger.Debug("delete of unknown edge ignored", "edge", id)
		return nil
	}
	e.removeEdge(id)
	e.reportEdges(e.snap.ActiveEdges())
	e.notify(OpDeleteEdge)
	return nil
}

// removeEdge deactivates id and drops it from both adjacency lists. Its slot
// in Order is kept so a re-created edge reports in its original position.
func (e *Engine) removeEdge(id string) {
	er := e.snap.Edges[id]
	if er == nil {
		return
	}
	er.Active = false
	if n, ok := e.snap.Lookup(er.Source); ok {
		n.EdgesOut = slices.DeleteFunc(n.EdgesOut, func(s string) bool { return s == id })
	}
	if n, ok := e.snap.Lookup(er.Target); ok {
		n.EdgesIn = slices.DeleteFunc(n.EdgesIn, func(s string) bool { return s == id })
	}
}
