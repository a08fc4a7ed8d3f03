// Copyright © 2024 The rsresolve authors

package syntax

import "fmt"

// Node is a handle to a node in a Tree. The zero Node is nil: it belongs to
// no tree and every accessor on it returns a zero value.
type Node struct {
	tree *Tree
	id   NodeID
}

// IsNil reports whether n refers to no node.
func (n Node) IsNil() bool {
	return n.tree == nil || n.id < 0 || int(n.id) >= len(n.tree.nodes)
}

func (n Node) data() *node {
	return &n.tree.nodes[n.id]
}

// Tree returns the tree n belongs to.
func (n Node) Tree() *Tree { return n.tree }

// ID returns the arena index of n.
func (n Node) ID() NodeID {
	if n.IsNil() {
		return NoNode
	}
	return n.id
}

// Kind returns the node kind.
func (n Node) Kind() Kind {
	if n.IsNil() {
		return KindOther
	}
	return n.data().kind
}

// Is reports whether n has one of the given kinds.
func (n Node) Is(kinds ...Kind) bool {
	k := n.Kind()
	for _, want := range kinds {
		if k == want && !n.IsNil() {
			return true
		}
	}
	return false
}

// Type returns the raw grammar type name.
func (n Node) Type() string {
	if n.IsNil() {
		return ""
	}
	return n.data().typ
}

// Field returns the grammar field name n occupies under its parent, or "".
func (n Node) Field() string {
	if n.IsNil() {
		return ""
	}
	return n.data().field
}

// Range returns the byte range n covers.
func (n Node) Range() TextRange {
	if n.IsNil() {
		return TextRange{}
	}
	return n.data().rng
}

// Start returns the start offset of n.
func (n Node) Start() int { return n.Range().Start }

// End returns the end offset of n.
func (n Node) End() int { return n.Range().End }

// Text returns the source text covered by n.
func (n Node) Text() string {
	if n.IsNil() {
		return ""
	}
	return n.tree.TextOf(n.data().rng)
}

// Parent returns the parent of n, or the nil Node for the root.
func (n Node) Parent() Node {
	if n.IsNil() {
		return Node{}
	}
	return n.tree.Node(n.data().parent)
}

// ChildCount returns the number of children.
func (n Node) ChildCount() int {
	if n.IsNil() {
		return 0
	}
	return len(n.data().children)
}

// Child returns the i-th child or the nil Node.
func (n Node) Child(i int) Node {
	if n.IsNil() {
		return Node{}
	}
	children := n.data().children
	if i < 0 || i >= len(children) {
		return Node{}
	}
	return Node{tree: n.tree, id: children[i]}
}

// Children returns the children of n in document order.
func (n Node) Children() []Node {
	if n.IsNil() {
		return nil
	}
	ids := n.data().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}
	return out
}

// ChildByField returns the first child occupying the named field.
func (n Node) ChildByField(field string) Node {
	if n.IsNil() {
		return Node{}
	}
	for _, id := range n.data().children {
		if n.tree.nodes[id].field == field {
			return Node{tree: n.tree, id: id}
		}
	}
	return Node{}
}

// ChildOfKind returns the first child with one of the given kinds.
func (n Node) ChildOfKind(kinds ...Kind) Node {
	for _, c := range n.Children() {
		if c.Is(kinds...) {
			return c
		}
	}
	return Node{}
}

// NextSibling returns the next child of n's parent.
func (n Node) NextSibling() Node {
	return n.Parent().Child(n.index() + 1)
}

// PrevSibling returns the previous child of n's parent.
func (n Node) PrevSibling() Node {
	if n.index() == 0 {
		return Node{}
	}
	return n.Parent().Child(n.index() - 1)
}

func (n Node) index() int {
	if n.IsNil() {
		return -1
	}
	return n.data().index
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n Node) IsAncestorOf(other Node) bool {
	if n.IsNil() || other.tree != n.tree {
		return false
	}
	for p := other.Parent(); !p.IsNil(); p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest strict ancestor of n with one of the given
// kinds.
func (n Node) Ancestor(kinds ...Kind) Node {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		if p.Is(kinds...) {
			return p
		}
	}
	return Node{}
}

func (n Node) String() string {
	if n.IsNil() {
		return "<nil>"
	}
	line, col := n.tree.Position(n.Start())
	return fmt.Sprintf("%s@%d:%d", n.Type(), line+1, col+1)
}
