// Package bt implements a resumable behavior tree. Composites walk their
// children behind a per-composite cursor, decorators rewrite turns and
// results through typed hooks, and a Running result is ordinary data that
// makes the next turn pick up where this one stopped. One tick per turn,
// one goroutine per tree.
package bt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Tree is a finalized behavior tree. NewTree validates the whole structure
// up front and freezes it: after construction only cursor positions and hook
// state ever change, never the shape.
type Tree struct {
	name        string
	root        Node
	size        int
	fingerprint uint64
}

// NewTree validates the graph hanging off root and finalizes it. It rejects
// nil nodes, childless composites, unbound decorators and any node reachable
// through more than one parent, since shared nodes would share cursor and
// hook state.
func NewTree(name string, root Node) (*Tree, error) {
	if name == "" {
		return nil, errors.New("bt: tree name is empty")
	}
	if root == nil {
		return nil, errors.New("bt: tree root is nil")
	}

	seen := make(map[Node]struct{})
	digest := xxhash.New()
	size := 0

	var walk func(n Node) error
	walk = func(n Node) error {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("bt: node %q is reachable through more than one parent", n.Name())
		}
		seen[n] = struct{}{}
		size++

		switch v := n.(type) {
		case *Sequence:
			if len(v.children) == 0 {
				return fmt.Errorf("bt: sequence %q has no children", v.name)
			}
			stamp(digest, "sequence", v.name, v.keepState, len(v.children))
			for i, child := range v.children {
				if child == nil {
					return fmt.Errorf("bt: sequence %q child %d is nil", v.name, i)
				}
				if err := walk(child); err != nil {
					return err
				}
			}
			v.frozen = true
		case *Selector:
			if len(v.children) == 0 {
				return fmt.Errorf("bt: selector %q has no children", v.name)
			}
			stamp(digest, "selector", v.name, v.keepState, len(v.children))
			for i, child := range v.children {
				if child == nil {
					return fmt.Errorf("bt: selector %q child %d is nil", v.name, i)
				}
				if err := walk(child); err != nil {
					return err
				}
			}
			v.frozen = true
		case *Decorator:
			if v.child == nil {
				return fmt.Errorf("bt: decorator %q has no child bound", v.name)
			}
			stamp(digest, fmt.Sprintf("decorator/%T", v.hook), v.name, false, 1)
			if err := walk(v.child); err != nil {
				return err
			}
			v.frozen = true
		case *Leaf:
			stamp(digest, "leaf", v.name, false, 0)
		default:
			stamp(digest, fmt.Sprintf("%T", n), n.Name(), false, 0)
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	_, _ = digest.WriteString(name)

	return &Tree{
		name:        name,
		root:        root,
		size:        size,
		fingerprint: digest.Sum64(),
	}, nil
}

func (t *Tree) Name() string {
	return t.name
}

func (t *Tree) Root() Node {
	return t.root
}

// Size is the number of nodes in the tree.
func (t *Tree) Size() int {
	return t.size
}

// Fingerprint is a stable hash over the tree's structure: node kinds, names,
// keep-state flags, arities and hook types in walk order. Two builds of the
// same definition produce the same value.
func (t *Tree) Fingerprint() uint64 {
	return t.fingerprint
}

// Tick evaluates the whole tree once. It is the single per-turn entry point.
func (t *Tree) Tick(turn *Turn) Status {
	return t.root.Tick(turn)
}

func stamp(d *xxhash.Digest, kind, name string, keepState bool, arity int) {
	_, _ = d.WriteString(kind)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(name)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.FormatBool(keepState))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(arity))
	_, _ = d.WriteString(";")
}
