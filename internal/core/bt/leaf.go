package bt

import "fmt"

// LeafFunc is the worker function a Leaf wraps. All contact with the outside
// world happens in leaf functions.
type LeafFunc func(t *Turn) Status

// Predicate is a boolean check against the current turn, used by condition
// leaves and by wait-until decorators.
type Predicate func(t *Turn) bool

// Leaf wraps a function as a terminal node. Leaves keep no execution state of
// their own and can be ticked any number of times.
type Leaf struct {
	baseNode
	fn LeafFunc
}

func NewLeaf(name string, fn LeafFunc) *Leaf {
	if fn == nil {
		panic(fmt.Sprintf("bt: leaf %q has no function", name))
	}
	return &Leaf{baseNode: baseNode{name: name}, fn: fn}
}

// NewCondition wraps a predicate as a leaf that maps true onto Success and
// false onto Failure. Condition leaves never report Running.
func NewCondition(name string, pred Predicate) *Leaf {
	if pred == nil {
		panic(fmt.Sprintf("bt: condition %q has no predicate", name))
	}
	return NewLeaf(name, func(t *Turn) Status {
		if pred(t) {
			return StatusSuccess
		}
		return StatusFailure
	})
}

func (l *Leaf) Tick(t *Turn) Status {
	return l.fn(t)
}
