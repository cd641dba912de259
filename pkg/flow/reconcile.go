package flow

// Reconciler decides whether a host update must rebuild the runtime.
//
// A rebuild happens on the first update, when the node count differs from
// the last rebuild, or when the host's generation number differs. Anything
// else is a content-only update that keeps live positions and endpoints.
type Reconciler struct {
	nodeCount  int
	generation uint64
	primed     bool
}

// NeedsRebuild reports whether an update with nodeCount nodes at generation
// gen must rebuild.
func (r *Reconciler) NeedsRebuild(nodeCount int, gen uint64) bool {
	return !r.primed || nodeCount != r.nodeCount || gen != r.generation
}

// Commit records the inputs of a completed rebuild.
func (r *Reconciler) Commit(nodeCount int, gen uint64) {
	r.nodeCount = nodeCount
	r.generation = gen
	r.primed = true
}

// Generation returns the generation of the last rebuild.
func (r *Reconciler) Generation() uint64 { return r.generation }
