// Copyright © 2024 The rsresolve authors

package resolve

import (
	"iter"

	"github.com/luthersystems/rsresolve/syntax"
)

// ScopeKind classifies the construct anchoring a scope.
type ScopeKind int

const (
	ScopeFile ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeClosure
	ScopeBlock
	ScopeItem
	ScopeLoop
	ScopeMatchArm
	ScopeCondition
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeClosure:
		return "closure"
	case ScopeBlock:
		return "block"
	case ScopeItem:
		return "item"
	case ScopeLoop:
		return "loop"
	case ScopeMatchArm:
		return "match arm"
	case ScopeCondition:
		return "condition"
	}
	return "unknown"
}

// Scope is a region of the tree that can contribute declarations. It is
// identified entirely by its anchor node; all declarations are derived from
// the tree on demand.
type Scope struct {
	anchor syntax.Node
}

// Anchor returns the node that owns the scope.
func (s Scope) Anchor() syntax.Node { return s.anchor }

// IsNil reports whether s is the zero Scope.
func (s Scope) IsNil() bool { return s.anchor.IsNil() }

// Kind returns the kind of construct anchoring s.
func (s Scope) Kind() ScopeKind {
	k, _ := scopeKindOf(s.anchor)
	return k
}

// Range returns the region covered by the scope.
func (s Scope) Range() syntax.TextRange { return s.anchor.Range() }

func (s Scope) String() string {
	return s.Kind().String() + " scope " + s.anchor.String()
}

// scopeKindOf reports whether n anchors a scope, and of which kind. The
// root of a tree always anchors the file scope.
func scopeKindOf(n syntax.Node) (ScopeKind, bool) {
	if n.IsNil() {
		return ScopeFile, false
	}
	switch n.Kind() {
	case syntax.KindSourceFile:
		return ScopeFile, true
	case syntax.KindModItem:
		if !n.ChildByField("body").IsNil() {
			return ScopeModule, true
		}
	case syntax.KindFunctionItem, syntax.KindFunctionSignatureItem:
		return ScopeFunction, true
	case syntax.KindClosureExpression:
		return ScopeClosure, true
	case syntax.KindBlock:
		return ScopeBlock, true
	case syntax.KindStructItem, syntax.KindEnumItem, syntax.KindUnionItem,
		syntax.KindTraitItem, syntax.KindImplItem, syntax.KindTypeItem:
		if !n.ChildByField("type_parameters").IsNil() {
			return ScopeItem, true
		}
	case syntax.KindForExpression:
		return ScopeLoop, true
	case syntax.KindMatchArm:
		return ScopeMatchArm, true
	case syntax.KindIfLetExpression, syntax.KindWhileLetExpression:
		return ScopeCondition, true
	case syntax.KindIfExpression, syntax.KindWhileExpression:
		if n.ChildByField("condition").Is(syntax.KindLetCondition, syntax.KindLetChain) {
			return ScopeCondition, true
		}
	}
	if n.Parent().IsNil() {
		return ScopeFile, true
	}
	return ScopeFile, false
}

// ScopeFor returns the innermost scope containing n, n itself included.
// It panics if n is nil; a node always has at least the file scope.
func ScopeFor(n syntax.Node) Scope {
	if n.IsNil() {
		panic("resolve: ScopeFor called with a nil node")
	}
	for p := n; ; p = p.Parent() {
		if _, ok := scopeKindOf(p); ok {
			return Scope{anchor: p}
		}
	}
}

// ParentScope returns the scope enclosing s. It reports false for the file
// scope.
func ParentScope(s Scope) (Scope, bool) {
	p := s.anchor.Parent()
	if p.IsNil() {
		return Scope{}, false
	}
	return ScopeFor(p), true
}

// ScopeChain yields the scopes enclosing n from innermost to the file
// scope.
func ScopeChain(n syntax.Node) iter.Seq[Scope] {
	return func(yield func(Scope) bool) {
		for s, ok := ScopeFor(n), true; ok; s, ok = ParentScope(s) {
			if !yield(s) {
				return
			}
		}
	}
}

// RootScope returns the file scope of the tree n belongs to.
func RootScope(n syntax.Node) Scope {
	return Scope{anchor: n.Tree().Root()}
}

// EnclosingModule returns the nearest module or file scope that contains
// s, s included.
func EnclosingModule(s Scope) Scope {
	for cur, ok := s, true; ok; cur, ok = ParentScope(cur) {
		switch cur.Kind() {
		case ScopeFile, ScopeModule:
			return cur
		}
	}
	return s
}

// ParentModule returns the module enclosing module scope s. It reports
// false for the file scope.
func ParentModule(s Scope) (Scope, bool) {
	s = EnclosingModule(s)
	p, ok := ParentScope(s)
	if !ok {
		return Scope{}, false
	}
	return EnclosingModule(p), true
}

// moduleDecl returns the namespace declaration standing for module scope
// s. The file scope is the crate root.
func moduleDecl(s Scope) Decl {
	a := s.anchor
	if s.Kind() == ScopeFile {
		return Decl{Name: "crate", Kind: DeclModule, Node: a}
	}
	d := Decl{
		Name:     a.ChildByField("name").Text(),
		Kind:     DeclModule,
		Node:     a,
		NameNode: a.ChildByField("name"),
	}
	if p, ok := ParentScope(s); ok {
		d.Scope = p
	}
	return d
}
