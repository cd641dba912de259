package flow

import (
	"github.com/matzehuels/flowchart/pkg/errors"
)

// EventType names a renderer event.
type EventType string

const (
	EventMount        EventType = "mount"
	EventPressNode    EventType = "press_node"
	EventMoveNode     EventType = "move_node"
	EventDeleteNode   EventType = "delete_node"
	EventPressOutput  EventType = "press_output"
	EventReleaseInput EventType = "release_input"
	EventMouseMove    EventType = "mouse_move"
	EventMouseUp      EventType = "mouse_up"
	EventDeleteEdge   EventType = "delete_edge"
)

// Event is a serializable renderer event. Node events address the node by
// Node id when it is set, else by Ordinal. X and Y carry the pointer
// position, or the press offset for EventPressNode. Port is the port index.
type Event struct {
	Type    EventType `json:"type" toml:"type"`
	Node    string    `json:"node,omitempty" toml:"node,omitempty"`
	Ordinal int       `json:"ordinal,omitempty" toml:"ordinal,omitempty"`
	Port    int       `json:"port,omitempty" toml:"port,omitempty"`
	X       float64   `json:"x,omitempty" toml:"x,omitempty"`
	Y       float64   `json:"y,omitempty" toml:"y,omitempty"`
	Edge    string    `json:"edge,omitempty" toml:"edge,omitempty"`
	Inputs  []Point   `json:"inputs,omitempty" toml:"inputs,omitempty"`
	Outputs []Point   `json:"outputs,omitempty" toml:"outputs,omitempty"`
}

// Dispatch routes ev to the matching handler.
func (e *Engine) Dispatch(ev Event) error {
	switch ev.Type {
	case EventMount:
		ord, err := e.ordinal(ev)
		if err != nil {
			return err
		}
		return e.MountNode(ord, ev.Inputs, ev.Outputs)
	case EventPressNode:
		return e.PressNode(ev.X, ev.Y)
	case EventMoveNode:
		ord, err := e.ordinal(ev)
		if err != nil {
			return err
		}
		return e.MoveNode(ord, ev.X, ev.Y)
	case EventDeleteNode:
		id := ev.Node
		if id == "" {
			n, err := e.node(ev.Ordinal)
			if err != nil {
				return err
			}
			id = n.ID
		}
		return e.DeleteNode(id)
	case EventPressOutput:
		ord, err := e.ordinal(ev)
		if err != nil {
			return err
		}
		return e.PressOutput(ord, ev.Port)
	case EventReleaseInput:
		ord, err := e.ordinal(ev)
		if err != nil {
			return err
		}
		return e.ReleaseInput(ord, ev.Port)
	case EventMouseMove:
		return e.MoveMouse(ev.X, ev.Y)
	case EventMouseUp:
		return e.ReleaseMouse()
	case EventDeleteEdge:
		return e.DeleteEdge(ev.Edge)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown event type %q", ev.Type)
	}
}

// DispatchAll applies events in order and stops at the first error, returning
// the number applied.
func (e *Engine) DispatchAll(events []Event) (int, error) {
	for i, ev := range events {
		if err := e.Dispatch(ev); err != nil {
			return i, errors.Wrap(errors.GetCode(err), err, "event %d (%s)", i, ev.Type)
		}
	}
	return len(events), nil
}

func (e *Engine) ordinal(ev Event) (int, error) {
	if ev.Node == "" {
		return ev.Ordinal, nil
	}
	i, ok := e.snap.Index[ev.Node]
	if !ok {
		return 0, errors.New(errors.ErrCodeNodeNotFound, "node %q not in current generation", ev.Node)
	}
	return i, nil
}
