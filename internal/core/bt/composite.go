package bt

import "fmt"

// Sequence ticks its children in order and succeeds only when every child
// succeeds. The first non-Success result short-circuits the walk: Failure
// aborts the whole sequence, Running parks it for the next turn.
type Sequence struct {
	baseNode
	children  []Node
	keepState bool
	cur       *cursor
	frozen    bool
}

func NewSequence(name string) *Sequence {
	return &Sequence{baseNode: baseNode{name: name}}
}

// AddChild appends a child and returns the sequence for chaining. Assembly
// time only; once the tree is finalized the call panics.
func (s *Sequence) AddChild(child Node) *Sequence {
	s.mutable("AddChild")
	s.children = append(s.children, child)
	return s
}

// KeepState makes the sequence resume an in-progress child after a Running
// turn instead of re-walking its children from the first one.
func (s *Sequence) KeepState() *Sequence {
	s.mutable("KeepState")
	s.keepState = true
	return s
}

func (s *Sequence) Tick(t *Turn) Status {
	if s.cur == nil || !s.keepState {
		s.cur = newCursor(s.children)
	}
	for {
		switch s.cur.current().Tick(t) {
		case StatusSuccess:
			if s.cur.advance() {
				continue
			}
			s.cur.reset()
			return StatusSuccess
		case StatusFailure:
			s.cur.reset()
			return StatusFailure
		default:
			// Leave the cursor on the running child.
			return StatusRunning
		}
	}
}

func (s *Sequence) mutable(op string) {
	if s.frozen {
		panic(fmt.Sprintf("bt: %s on finalized sequence %q", op, s.name))
	}
}

// Selector ticks its children in order until one of them succeeds or reports
// Running. It fails only after every child has failed in the same walk.
type Selector struct {
	baseNode
	children  []Node
	keepState bool
	cur       *cursor
	frozen    bool
}

func NewSelector(name string) *Selector {
	return &Selector{baseNode: baseNode{name: name}}
}

// AddChild appends a child and returns the selector for chaining. Assembly
// time only; once the tree is finalized the call panics.
func (s *Selector) AddChild(child Node) *Selector {
	s.mutable("AddChild")
	s.children = append(s.children, child)
	return s
}

// KeepState makes the selector resume an in-progress child after a Running
// turn instead of re-walking its children from the first one.
func (s *Selector) KeepState() *Selector {
	s.mutable("KeepState")
	s.keepState = true
	return s
}

func (s *Selector) Tick(t *Turn) Status {
	if s.cur == nil || !s.keepState {
		s.cur = newCursor(s.children)
	}
	for {
		switch s.cur.current().Tick(t) {
		case StatusSuccess:
			s.cur.reset()
			return StatusSuccess
		case StatusFailure:
			if s.cur.advance() {
				continue
			}
			// Every alternative failed.
			s.cur.reset()
			return StatusFailure
		default:
			// Leave the cursor on the running child.
			return StatusRunning
		}
	}
}

func (s *Selector) mutable(op string) {
	if s.frozen {
		panic(fmt.Sprintf("bt: %s on finalized selector %q", op, s.name))
	}
}
