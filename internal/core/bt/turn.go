package bt

import (
	"context"
	"time"
)

// Turn is the bag of state handed down the tree for the duration of one tick.
// Composites pass the same instance to every child; a decorator hook may hand
// a derived copy to its subtree instead.
type Turn struct {
	Ctx   context.Context
	World any
	BB    *Blackboard
	// Prev is the snapshot taken at the end of the previous turn, nil on the
	// first turn of a driver's life.
	Prev   any
	Number int
	Clock  func() time.Time
}

// Derive returns a shallow copy of the turn. Writes through shared references
// (the blackboard, the world handle) stay visible to everyone; overriding a
// field on the copy stays local to the subtree that received it.
func (t *Turn) Derive() *Turn {
	cp := *t
	return &cp
}
