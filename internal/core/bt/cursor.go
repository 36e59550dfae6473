package bt

// cursor tracks which child of a composite is current. Each composite owns at
// most one cursor; whether it survives from one tick to the next is the
// composite's keep-state decision.
type cursor struct {
	children []Node
	index    int
}

func newCursor(children []Node) *cursor {
	if len(children) == 0 {
		panic("bt: composite ticked with no children")
	}
	return &cursor{children: children}
}

func (c *cursor) current() Node {
	return c.children[c.index]
}

func (c *cursor) hasNext() bool {
	return c.index < len(c.children)-1
}

// advance moves to the next child and reports whether it moved.
func (c *cursor) advance() bool {
	if !c.hasNext() {
		return false
	}
	c.index++
	return true
}

func (c *cursor) reset() {
	c.index = 0
}
