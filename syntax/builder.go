// Copyright © 2024 The rsresolve authors

package syntax

import (
	"errors"
	"fmt"
)

// Builder assembles a Tree in document order. The first node opened becomes
// the root; every later node is attached to the innermost open node.
//
//	b := syntax.NewBuilder(syntax.LangRust, "main.rs", src)
//	b.Open("source_file", "", 0)
//	b.Leaf("identifier", "", 0, 1)
//	b.Close(len(src))
//	tree, err := b.Tree()
type Builder struct {
	tree   *Tree
	stack  []NodeID
	closed bool
	err    error
}

// NewBuilder returns a builder for a tree over src.
func NewBuilder(lang Language, filename string, src []byte) *Builder {
	return &Builder{
		tree: &Tree{
			lang:     lang,
			filename: filename,
			src:      src,
			lines:    lineStarts(src),
		},
	}
}

// Open starts a node of grammar type typ occupying field under the current
// node and makes it current.
func (b *Builder) Open(typ, field string, start int) NodeID {
	if b.err != nil {
		return NoNode
	}
	if b.closed {
		b.err = errors.New("syntax: node opened after the root was closed")
		return NoNode
	}
	id := NodeID(len(b.tree.nodes))
	n := node{
		kind:   KindOf(typ),
		typ:    typ,
		field:  field,
		rng:    TextRange{Start: start, End: start},
		parent: NoNode,
	}
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		n.parent = parent
		n.index = len(b.tree.nodes[parent].children)
		b.tree.nodes[parent].children = append(b.tree.nodes[parent].children, id)
	} else if id != 0 {
		b.err = errors.New("syntax: second root node")
		return NoNode
	}
	b.tree.nodes = append(b.tree.nodes, n)
	b.stack = append(b.stack, id)
	return id
}

// Close ends the current node at offset end.
func (b *Builder) Close(end int) {
	if b.err != nil {
		return
	}
	if len(b.stack) == 0 {
		b.err = errors.New("syntax: close without open node")
		return
	}
	id := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	n := &b.tree.nodes[id]
	if end < n.rng.Start {
		b.err = fmt.Errorf("syntax: %s ends at %d before its start %d", n.typ, end, n.rng.Start)
		return
	}
	n.rng.End = end
	if len(b.stack) == 0 {
		b.closed = true
	}
}

// Leaf adds a node without children.
func (b *Builder) Leaf(typ, field string, start, end int) NodeID {
	id := b.Open(typ, field, start)
	b.Close(end)
	return id
}

// Tree finishes building and returns the tree.
func (b *Builder) Tree() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 0 {
		return nil, fmt.Errorf("syntax: %d unclosed nodes", len(b.stack))
	}
	if len(b.tree.nodes) == 0 {
		return nil, errors.New("syntax: empty tree")
	}
	return b.tree, nil
}
