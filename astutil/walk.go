// Copyright © 2024 The rsresolve authors

// Package astutil provides shared tree walking utilities for rsresolve
// syntax trees.
//
// These helpers are used by the analysis, lint and lsp packages for
// traversing parsed Rust source.
package astutil

import (
	"strings"

	"github.com/luthersystems/rsresolve/syntax"
)

// Walk calls fn for every node under root (inclusive), depth-first in
// document order. parent is the nil Node for root.
func Walk(root syntax.Node, fn func(n, parent syntax.Node, depth int)) {
	walkNode(root, syntax.Node{}, 0, fn)
}

func walkNode(n, parent syntax.Node, depth int, fn func(syntax.Node, syntax.Node, int)) {
	if n.IsNil() {
		return
	}
	fn(n, parent, depth)
	for _, child := range n.Children() {
		walkNode(child, n, depth+1, fn)
	}
}

// Inspect calls fn for every node under root in document order. When fn
// returns false the children of that node are skipped.
func Inspect(root syntax.Node, fn func(n syntax.Node) bool) {
	if root.IsNil() || !fn(root) {
		return
	}
	for _, child := range root.Children() {
		Inspect(child, fn)
	}
}

// FindAll returns every node under root with one of the given kinds.
func FindAll(root syntax.Node, kinds ...syntax.Kind) []syntax.Node {
	var out []syntax.Node
	Inspect(root, func(n syntax.Node) bool {
		if n.Is(kinds...) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Comments returns every comment in the tree.
func Comments(tree *syntax.Tree) []syntax.Node {
	return FindAll(tree.Root(), syntax.KindLineComment, syntax.KindBlockComment)
}

// NameOf returns the text of an item's name field, or "".
func NameOf(item syntax.Node) string {
	return item.ChildByField("name").Text()
}

// Innermost returns the deepest node under root whose range covers r, or
// root itself.
func Innermost(root syntax.Node, r syntax.TextRange) syntax.Node {
	cur := root
	for {
		next := syntax.Node{}
		for _, c := range cur.Children() {
			if c.Range().Covers(r) {
				next = c
				break
			}
		}
		if next.IsNil() {
			return cur
		}
		cur = next
	}
}

// LineOf returns the 1-based line of a node's start.
func LineOf(n syntax.Node) int {
	if n.IsNil() {
		return 0
	}
	line, _ := n.Tree().Position(n.Start())
	return line + 1
}

// CollapseSpace joins the lines of s with single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
