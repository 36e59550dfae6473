package bt

// Node is a behavior tree node. Tick evaluates the node against the current
// turn and returns a Status; it never returns an error. Leaves translate
// whatever goes wrong in the outside world into StatusFailure.
type Node interface {
	Name() string
	Tick(t *Turn) Status
}

// Base node

type baseNode struct {
	name string
}

func (n baseNode) Name() string {
	return n.name
}
