// Copyright © 2024 The rsresolve authors

package resolve

import (
	"iter"

	"github.com/luthersystems/rsresolve/syntax"
)

// itemKinds maps item node kinds to the declaration they contribute.
var itemKinds = map[syntax.Kind]DeclKind{
	syntax.KindFunctionItem:          DeclFunction,
	syntax.KindFunctionSignatureItem: DeclFunction,
	syntax.KindModItem:               DeclModule,
	syntax.KindStructItem:            DeclStruct,
	syntax.KindEnumItem:              DeclEnum,
	syntax.KindUnionItem:             DeclUnion,
	syntax.KindTraitItem:             DeclTrait,
	syntax.KindTypeItem:              DeclTypeAlias,
	syntax.KindConstItem:             DeclConst,
	syntax.KindStaticItem:            DeclStatic,
	syntax.KindMacroDefinition:       DeclMacro,
}

// Declarations yields every declaration scope s contributes, in document
// order. Bindings are yielded together with the region they are visible
// in; items are visible throughout the scope.
func Declarations(s Scope) iter.Seq[Decl] {
	return func(yield func(Decl) bool) {
		w := walker{scope: s, yield: yield}
		w.walk()
	}
}

type walker struct {
	scope Scope
	yield func(Decl) bool
}

func (w *walker) walk() bool {
	a := w.scope.anchor
	switch w.scope.Kind() {
	case ScopeFile:
		if a.Is(syntax.KindError) {
			return w.partial(a)
		}
		return w.items(a)
	case ScopeModule:
		return w.items(a.ChildByField("body"))
	case ScopeFunction:
		return w.typeParams(a) && w.params(a.ChildByField("parameters"), a.Range())
	case ScopeClosure:
		return w.params(a.ChildByField("parameters"), a.Range())
	case ScopeItem:
		return w.typeParams(a)
	case ScopeBlock:
		return w.block(a)
	case ScopeLoop:
		body := a.ChildByField("body")
		return w.bindings(a.ChildByField("pattern"), a, DeclPatternBinding, body.Range())
	case ScopeMatchArm:
		pat := armPattern(a)
		return w.bindings(pat, pat, DeclPatternBinding, syntax.TextRange{Start: pat.End(), End: a.End()})
	case ScopeCondition:
		return w.condition(a)
	}
	return true
}

func (w *walker) emit(d Decl) bool {
	d.Scope = w.scope
	return w.yield(d)
}

// items yields the items declared directly in container.
func (w *walker) items(container syntax.Node) bool {
	for _, c := range container.Children() {
		if !w.item(c) {
			return false
		}
	}
	return true
}

func (w *walker) item(c syntax.Node) bool {
	if kind, ok := itemKinds[c.Kind()]; ok {
		name := c.ChildByField("name")
		if name.IsNil() {
			return true
		}
		return w.emit(Decl{Name: name.Text(), Kind: kind, Node: c, NameNode: name})
	}
	switch c.Kind() {
	case syntax.KindUseDeclaration:
		return w.useTree(c.ChildByField("argument"))
	case syntax.KindExternCrateDeclaration:
		name := c.ChildByField("alias")
		if name.IsNil() {
			name = c.ChildByField("name")
		}
		if name.IsNil() {
			return true
		}
		return w.emit(Decl{Name: name.Text(), Kind: DeclCrate, Node: c, NameNode: name})
	case syntax.KindForeignModItem:
		return w.items(c.ChildByField("body"))
	case syntax.KindError:
		return w.partial(c)
	}
	return true
}

// partial yields the declarations of a run of partially parsed code, such
// as a function whose body is still open. An open body runs to the end of
// the construct holding it, so parameters are visible from the start of the
// run to that end and let bindings from the end of their statement.
func (w *walker) partial(e syntax.Node) bool {
	end := e.End()
	if p := e.Parent(); !p.IsNil() {
		end = max(end, p.End())
	}
	for _, c := range e.Children() {
		ok := true
		switch c.Kind() {
		case syntax.KindLetDeclaration:
			visible := syntax.TextRange{Start: c.End(), End: end}
			ok = w.bindings(c.ChildByField("pattern"), c, DeclLet, visible)
		case syntax.KindParameters:
			ok = w.params(c, syntax.TextRange{Start: e.Start(), End: end})
		case syntax.KindTypeParameters:
			ok = w.typeParamList(c)
		default:
			ok = w.item(c)
		}
		if !ok {
			return false
		}
	}
	return true
}

// useTree yields the imports introduced by a use tree.
func (w *walker) useTree(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindUseList:
		for _, c := range n.Children() {
			if !w.useTree(c) {
				return false
			}
		}
		return true
	case syntax.KindScopedUseList:
		return w.useTree(n.ChildByField("list"))
	case syntax.KindUseWildcard:
		return w.emit(Decl{Kind: DeclGlob, Node: n})
	case syntax.KindUseAsClause:
		alias := n.ChildByField("alias")
		if alias.IsNil() {
			return true
		}
		return w.emit(Decl{Name: alias.Text(), Kind: DeclImport, Node: n, NameNode: alias})
	}
	segs, ok := importSegments(n)
	if !ok || len(segs) == 0 {
		return true
	}
	last := segs[len(segs)-1]
	nameNode := last.node
	if n.Is(syntax.KindSelf) {
		// `a::b::{self}` binds b at the `self`
		nameNode = n
	}
	if last.name == "" {
		return true
	}
	return w.emit(Decl{Name: last.name, Kind: DeclImport, Node: n, NameNode: nameNode})
}

func (w *walker) typeParams(item syntax.Node) bool {
	return w.typeParamList(item.ChildByField("type_parameters"))
}

func (w *walker) typeParamList(tps syntax.Node) bool {
	for _, c := range tps.Children() {
		var name syntax.Node
		switch c.Kind() {
		case syntax.KindTypeIdentifier:
			name = c
		case syntax.KindConstrainedTypeParameter:
			name = c.ChildByField("left")
		case syntax.KindOptionalTypeParameter, syntax.KindConstParameter, syntax.KindTypeParameter:
			name = c.ChildByField("name")
			if name.IsNil() {
				name = c.ChildOfKind(syntax.KindTypeIdentifier, syntax.KindIdentifier)
			}
		}
		if name.IsNil() {
			continue
		}
		if !w.emit(Decl{Name: name.Text(), Kind: DeclTypeParam, Node: c, NameNode: name}) {
			return false
		}
	}
	return true
}

// params yields the bindings of a parameter list, visible throughout the
// owning function or closure.
func (w *walker) params(list syntax.Node, visible syntax.TextRange) bool {
	for _, p := range list.Children() {
		switch {
		case p.Is(syntax.KindSelfParameter):
			self := p.ChildOfKind(syntax.KindSelf)
			if self.IsNil() {
				continue
			}
			if !w.emit(Decl{Name: "self", Kind: DeclParam, Node: p, NameNode: self, Visible: visible}) {
				return false
			}
		case p.Is(syntax.KindVariadicParameter) || p.Kind().IsComment():
		default:
			if !w.bindings(parameterPattern(p), p, DeclParam, visible) {
				return false
			}
		}
	}
	return true
}

// block yields the statements of a block: items hoisted over the whole
// block and let bindings visible from the end of their statement.
func (w *walker) block(b syntax.Node) bool {
	for _, c := range b.Children() {
		if c.Is(syntax.KindLetDeclaration) {
			visible := syntax.TextRange{Start: c.End(), End: b.End()}
			if !w.bindings(c.ChildByField("pattern"), c, DeclLet, visible) {
				return false
			}
			continue
		}
		if !w.item(c) {
			return false
		}
	}
	return true
}

func (w *walker) condition(a syntax.Node) bool {
	body := a.ChildByField("consequence")
	if body.IsNil() {
		body = a.ChildByField("body")
	}
	if a.Is(syntax.KindIfLetExpression, syntax.KindWhileLetExpression) {
		return w.bindings(a.ChildByField("pattern"), a, DeclPatternBinding, body.Range())
	}
	cond := a.ChildByField("condition")
	lets := []syntax.Node{cond}
	if cond.Is(syntax.KindLetChain) {
		lets = cond.Children()
	}
	for _, lc := range lets {
		if !lc.Is(syntax.KindLetCondition) {
			continue
		}
		// later conditions of a chain see the binding too
		visible := syntax.TextRange{Start: lc.End(), End: body.End()}
		if !w.bindings(lc.ChildByField("pattern"), lc, DeclPatternBinding, visible) {
			return false
		}
	}
	return true
}

func (w *walker) bindings(pat, owner syntax.Node, kind DeclKind, visible syntax.TextRange) bool {
	return patternBindings(pat, func(name syntax.Node) bool {
		return w.emit(Decl{Name: name.Text(), Kind: kind, Node: owner, NameNode: name, Visible: visible})
	})
}

// armPattern returns the pattern of a match arm without its guard.
func armPattern(arm syntax.Node) syntax.Node {
	mp := arm.ChildByField("pattern")
	if !mp.Is(syntax.KindMatchPattern) {
		return mp
	}
	for _, c := range mp.Children() {
		if c.Field() != "condition" && !c.Kind().IsComment() {
			return c
		}
	}
	return mp
}

// Members yields the declarations reachable as `ns::name`: the items of a
// module or the variants of an enum. Other declarations have no members.
func Members(ns Decl) iter.Seq[Decl] {
	return func(yield func(Decl) bool) {
		switch ns.Kind {
		case DeclModule:
			for d := range moduleItems(ns) {
				if d.Kind == DeclGlob || d.Kind.IsBinding() {
					continue
				}
				if !yield(d) {
					return
				}
			}
		case DeclEnum:
			scope := ScopeFor(ns.Node)
			for _, v := range ns.Node.ChildByField("body").Children() {
				if !v.Is(syntax.KindEnumVariant) {
					continue
				}
				name := v.ChildByField("name")
				if name.IsNil() {
					continue
				}
				d := Decl{Name: name.Text(), Kind: DeclVariant, Node: v, NameNode: name, Scope: scope}
				if !yield(d) {
					return
				}
			}
		}
	}
}

// moduleItems yields every item of a module, glob imports included.
func moduleItems(ns Decl) iter.Seq[Decl] {
	return func(yield func(Decl) bool) {
		var w walker
		w.yield = yield
		switch {
		case ns.Node.Is(syntax.KindModItem):
			w.scope = Scope{anchor: ns.Node}
			w.items(ns.Node.ChildByField("body"))
		case ns.Node.Parent().IsNil():
			w.scope = Scope{anchor: ns.Node}
			w.items(ns.Node)
		}
	}
}
