package flow

// Pending is the in-progress edge state: either [Idle] or [Drawing].
// Switch on the concrete type.
type Pending interface {
	isPending()
}

// Idle means no edge is being drawn.
type Idle struct{}

// Drawing is an edge being dragged out of output port Output of the node at
// ordinal Source, with its loose end at Free.
type Drawing struct {
	Source int   `json:"source"`
	Output int   `json:"output"`
	Free   Point `json:"free"`
}

func (Idle) isPending()    {}
func (Drawing) isPending() {}
