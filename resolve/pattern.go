// Copyright © 2024 The rsresolve authors

package resolve

import "github.com/luthersystems/rsresolve/syntax"

// patternBindings calls fn with the identifier of every binding introduced
// by pattern p, in document order. It stops early when fn returns false.
func patternBindings(p syntax.Node, fn func(name syntax.Node) bool) bool {
	if p.IsNil() {
		return true
	}
	switch p.Kind() {
	case syntax.KindIdentifier, syntax.KindShorthandFieldIdentifier:
		return fn(p)
	case syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier,
		syntax.KindTypeIdentifier, syntax.KindGenericType,
		syntax.KindFieldIdentifier, syntax.KindMacroInvocation,
		syntax.KindSelf, syntax.KindCrate, syntax.KindSuper:
		return true
	case syntax.KindFieldPattern:
		if inner := p.ChildByField("pattern"); !inner.IsNil() {
			return patternBindings(inner, fn)
		}
		for _, c := range p.Children() {
			if c.Is(syntax.KindShorthandFieldIdentifier) {
				return fn(c)
			}
		}
		return true
	}
	if p.Type() == "range_pattern" || p.Kind().IsComment() {
		return true
	}
	for _, c := range p.Children() {
		// the path of `Some(x)` or `Point { x, .. }` is not a binding
		if c.Field() == "type" && p.Is(syntax.KindTupleStructPattern, syntax.KindStructPattern) {
			continue
		}
		if !patternBindings(c, fn) {
			return false
		}
	}
	return true
}

// parameterPattern returns the pattern a parameter binds. Closure
// parameters may be bare patterns.
func parameterPattern(p syntax.Node) syntax.Node {
	if p.Is(syntax.KindParameter) {
		return p.ChildByField("pattern")
	}
	return p
}
