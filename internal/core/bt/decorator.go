package bt

import "fmt"

// Hook is the decorator extension point. Before may hand a derived turn to
// the subtree, After rewrites the child's raw result. A hook instance lives
// as long as its tree and may carry private state across turns; nothing
// resets it between ticks.
type Hook interface {
	Before(t *Turn) *Turn
	After(t *Turn, raw Status) Status
}

// BaseHook is an identity hook for embedding in hooks that only override one
// side of the protocol.
type BaseHook struct{}

func (BaseHook) Before(t *Turn) *Turn { return t }

func (BaseHook) After(_ *Turn, raw Status) Status { return raw }

// Decorator wraps exactly one child and runs every tick through its hook.
// The child is ticked unconditionally; a decorator never short-circuits.
type Decorator struct {
	baseNode
	hook   Hook
	child  Node
	frozen bool
}

func NewDecorator(name string, hook Hook) *Decorator {
	if hook == nil {
		panic(fmt.Sprintf("bt: decorator %q has no hook", name))
	}
	return &Decorator{baseNode: baseNode{name: name}, hook: hook}
}

// Bind attaches the single child and returns the decorator for chaining.
// Required before the first tick; once the tree is finalized the call panics.
func (d *Decorator) Bind(child Node) *Decorator {
	if d.frozen {
		panic(fmt.Sprintf("bt: Bind on finalized decorator %q", d.name))
	}
	d.child = child
	return d
}

func (d *Decorator) Tick(t *Turn) Status {
	if d.child == nil {
		panic(fmt.Sprintf("bt: decorator %q ticked before Bind", d.name))
	}
	raw := d.child.Tick(d.hook.Before(t))
	return d.hook.After(t, raw)
}

// Stock decorators

// NewNegate returns a decorator that swaps Success and Failure. Running
// passes through untouched.
func NewNegate(name string) *Decorator {
	return NewDecorator(name, negateHook{})
}

type negateHook struct {
	BaseHook
}

func (negateHook) After(_ *Turn, raw Status) Status {
	switch raw {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return StatusRunning
	}
}

// NewDelay returns a decorator that sits on its child's result for one reach.
// The first reach stores the raw result and reports Running; the next reach
// releases the stored result and discards the fresh one. The child still runs
// on every reach, so its side effects land immediately even though the
// reported outcome lags behind. A stored result survives turns in which the
// decorator is not reached at all.
func NewDelay(name string) *Decorator {
	return NewDecorator(name, &delayHook{})
}

type delayHook struct {
	BaseHook
	pending Status
	held    bool
}

func (h *delayHook) After(_ *Turn, raw Status) Status {
	if h.held {
		h.held = false
		return h.pending
	}
	h.pending = raw
	h.held = true
	return StatusRunning
}

// NewUntil returns a decorator that re-invokes its child turn after turn
// until pred reports true, then succeeds. A child Failure aborts the wait
// immediately. Once the predicate has fired it is not consulted again until
// the goal is consumed by a Success.
func NewUntil(name string, pred Predicate) *Decorator {
	if pred == nil {
		panic(fmt.Sprintf("bt: until decorator %q has no predicate", name))
	}
	return NewDecorator(name, &untilHook{pred: pred})
}

type untilHook struct {
	pred Predicate
	done bool
}

func (h *untilHook) Before(t *Turn) *Turn {
	if !h.done && h.pred(t) {
		h.done = true
	}
	return t
}

func (h *untilHook) After(_ *Turn, raw Status) Status {
	if raw == StatusFailure {
		// The goal, if reached, stays latched for the next attempt.
		return StatusFailure
	}
	if h.done {
		h.done = false
		return StatusSuccess
	}
	return StatusRunning
}
