// Copyright © 2024 The rsresolve authors

// Package rstest contains fixtures for tests that need parsed Rust source.
//
// Source given to Marked may carry markers of the form /*@name*/. Markers
// are removed before parsing and their offsets returned, so a test can
// point at a position without counting bytes:
//
//	src := `fn f(x: i32) { /*@use*/x }`
//	tree, at := rstest.Marked(t, src)
//	ref, err := resolve.ReferenceAt(tree, at["use"])
package rstest

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/luthersystems/rsresolve/parser"
	"github.com/luthersystems/rsresolve/syntax"
	"github.com/stretchr/testify/require"
)

var markerRegexp = regexp.MustCompile(`/\*@([A-Za-z0-9_]+)\*/`)

// Parse parses src as main.rs. The test is skipped when the parser is not
// available in this build.
func Parse(t testing.TB, src string) *syntax.Tree {
	t.Helper()
	tree, err := parser.Parse(context.Background(), "main.rs", []byte(src))
	if errors.Is(err, parser.ErrNoCgo) {
		t.Skip("rust parser needs cgo")
	}
	require.NoError(t, err)
	return tree
}

// Marked strips /*@name*/ markers from src, parses the result and returns
// the offset of every marker.
func Marked(t testing.TB, src string) (*syntax.Tree, map[string]int) {
	t.Helper()
	clean, marks := StripMarkers(src)
	return Parse(t, clean), marks
}

// StripMarkers removes /*@name*/ markers from src and returns the offset
// each one had in the stripped text.
func StripMarkers(src string) (string, map[string]int) {
	marks := make(map[string]int)
	var out []byte
	last := 0
	for _, m := range markerRegexp.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, src[last:m[0]]...)
		marks[src[m[2]:m[3]]] = len(out)
		last = m[1]
	}
	out = append(out, src[last:]...)
	return string(out), marks
}

// NodeAt returns the node at the offset of marker name.
func NodeAt(t testing.TB, tree *syntax.Tree, marks map[string]int, name string) syntax.Node {
	t.Helper()
	off, ok := marks[name]
	require.True(t, ok, "no marker %q", name)
	n := tree.NodeAt(off)
	require.False(t, n.IsNil(), "no node at marker %q", name)
	return n
}
