// Copyright © 2024 The rsresolve authors

// Package syntax provides the read-only syntax tree view consumed by the
// resolver.
//
// A Tree is an arena: every node lives in one flat slice and a Node is a
// small comparable handle (tree pointer plus index) into it. Trees are
// immutable once built, so any number of readers may walk the same tree
// concurrently. Editing produces a brand new Tree.
package syntax

import (
	"sort"
)

// NodeID indexes a node within its tree's arena.
type NodeID int32

// NoNode is the NodeID of a missing node.
const NoNode NodeID = -1

type node struct {
	kind     Kind
	typ      string
	field    string
	rng      TextRange
	parent   NodeID
	index    int // position within parent's children
	children []NodeID
}

// Tree is an immutable syntax tree over a single source file.
type Tree struct {
	lang     Language
	filename string
	src      []byte
	nodes    []node
	lines    []int // byte offset of the start of each line
}

// Language returns the language the tree was parsed from.
func (t *Tree) Language() Language { return t.lang }

// Filename returns the name of the source the tree was parsed from.
func (t *Tree) Filename() string { return t.filename }

// Source returns the source text. The caller must not modify it.
func (t *Tree) Source() []byte { return t.src }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root node, or the nil Node for an empty tree.
func (t *Tree) Root() Node {
	if t == nil || len(t.nodes) == 0 {
		return Node{}
	}
	return Node{tree: t, id: 0}
}

// Node returns the handle for id. It returns the nil Node when id is out
// of range.
func (t *Tree) Node(id NodeID) Node {
	if t == nil || id < 0 || int(id) >= len(t.nodes) {
		return Node{}
	}
	return Node{tree: t, id: id}
}

// TextOf returns the source text covered by r, clamped to the source.
func (t *Tree) TextOf(r TextRange) string {
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > len(t.src) {
		end = len(t.src)
	}
	if start >= end {
		return ""
	}
	return string(t.src[start:end])
}

// NodeAt returns the deepest node whose range contains offset. Zero-width
// and comment nodes are preferred last. The root is returned when no child
// matches and the nil Node when offset lies outside the tree.
func (t *Tree) NodeAt(offset int) Node {
	cur := t.Root()
	if cur.IsNil() || !cur.Range().Contains(offset) {
		return Node{}
	}
	for {
		next := Node{}
		for _, c := range cur.Children() {
			r := c.Range()
			if r.IsEmpty() || !r.Contains(offset) {
				continue
			}
			// Prefer the child that starts at the offset over one that
			// merely ends there (cursor between `a` and `(`).
			if next.IsNil() || r.Start == offset {
				next = c
			}
		}
		if next.IsNil() {
			return cur
		}
		cur = next
	}
}

// lineStarts computes the start offset of every line in src.
func lineStarts(src []byte) []int {
	lines := []int{0}
	for i, c := range src {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// Position converts a byte offset to a 0-based line and byte column.
func (t *Tree) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.src) {
		offset = len(t.src)
	}
	line = sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - t.lines[line]
}

// Offset converts a 0-based line and byte column to a byte offset. Lines
// past the end clamp to the end of the source, columns past the end of a
// line clamp to the line end.
func (t *Tree) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(t.lines) {
		return len(t.src)
	}
	start := t.lines[line]
	end := t.lineEnd(line)
	if col < 0 {
		col = 0
	}
	if start+col > end {
		return end
	}
	return start + col
}

// LineCount returns the number of lines in the source.
func (t *Tree) LineCount() int { return len(t.lines) }

// Line returns the text of a 0-based line without its terminator.
func (t *Tree) Line(line int) string {
	if line < 0 || line >= len(t.lines) {
		return ""
	}
	return string(t.src[t.lines[line]:t.lineEnd(line)])
}

func (t *Tree) lineEnd(line int) int {
	end := len(t.src)
	if line+1 < len(t.lines) {
		end = t.lines[line+1] - 1
	}
	if end > t.lines[line] && t.src[end-1] == '\r' {
		end--
	}
	return end
}
