// Copyright © 2024 The rsresolve authors

package analysis

import (
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// skipTypes are subtrees that contain identifiers which never name a
// declaration.
var skipTypes = map[string]bool{
	"attribute_item":       true,
	"inner_attribute_item": true,
	"lifetime":             true,
	"label":                true,
	"visibility_modifier":  true,
	"macro_rule":           true,
}

type classification struct {
	decl resolve.Decl
	kind RefKind
}

// analyzer is the internal state for a single analysis run.
type analyzer struct {
	engine  *resolve.Engine
	externs map[string]bool
	classes map[syntax.Node]classification
	result  *Result
}

// collectSymbols records the declarations of every scope and the variants
// of every enum.
func (a *analyzer) collectSymbols(root syntax.Node) {
	astutil.Inspect(root, func(n syntax.Node) bool {
		if s := resolve.ScopeFor(n); s.Anchor() == n {
			for d := range resolve.Declarations(s) {
				if d.Kind != resolve.DeclGlob {
					a.addSymbol(d)
				}
			}
		}
		if n.Is(syntax.KindEnumItem) {
			if enum, ok := a.engine.DeclarationAt(n.ChildByField("name")); ok {
				for v := range resolve.Members(enum) {
					a.addSymbol(v)
				}
			}
		}
		return true
	})
}

func (a *analyzer) addSymbol(d resolve.Decl) {
	if _, ok := a.result.symbols[d]; ok {
		return
	}
	sym := &Symbol{Decl: d}
	a.result.symbols[d] = sym
	a.result.Symbols = append(a.result.Symbols, sym)
}

// collectReferences resolves every reference in document order.
func (a *analyzer) collectReferences(root syntax.Node) {
	astutil.Inspect(root, func(n syntax.Node) bool {
		if skipTypes[n.Type()] {
			return false
		}
		switch {
		case n.Type() == "token_tree":
			a.macroReferences(n)
			return false
		case n.Is(syntax.KindUseList):
			for _, c := range n.Children() {
				a.useLeaf(c)
			}
			return false
		case a.isCandidate(n):
			ref, err := a.engine.Reference(n)
			if err == nil {
				a.add(ref, a.classify(ref))
			}
		}
		return true
	})
}

// isCandidate reports whether n should be resolved as a reference on its
// own rather than as part of an enclosing path.
func (a *analyzer) isCandidate(n syntax.Node) bool {
	parent := n.Parent()
	switch n.Kind() {
	case syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier:
	case syntax.KindIdentifier, syntax.KindTypeIdentifier:
		switch n.Field() {
		case "name", "alias":
			if !parent.Is(syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier) {
				return false
			}
		}
		if d, ok := a.engine.DeclarationAt(n); ok && d.Kind != resolve.DeclImport {
			return false
		}
	case syntax.KindSelf:
		if parent.Is(syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier,
			syntax.KindUseAsClause, syntax.KindUseWildcard, syntax.KindSelfParameter) {
			return false
		}
	default:
		return false
	}
	// the name of `a::b` is covered by the path itself
	if n.Field() == "name" && parent.Is(syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier) {
		return false
	}
	return true
}

func (a *analyzer) add(ref *resolve.Reference, c classification) {
	r := &Reference{Ref: ref, Kind: c.kind, Decl: c.decl, InUse: inUse(ref.Node())}
	a.result.References = append(a.result.References, r)
	if c.kind == RefResolved {
		if sym := a.result.symbols[c.decl]; sym != nil {
			sym.References++
		}
	}
	if c.kind == RefUnresolved && !a.prefixUnresolved(ref) {
		a.result.Unresolved = append(a.result.Unresolved, &UnresolvedRef{
			Name:  ref.Name(),
			Path:  ref.Path().Text(),
			Range: ref.NameRange(),
			InUse: r.InUse,
			Ref:   ref,
		})
	}
}

func (a *analyzer) classify(ref *resolve.Reference) classification {
	key := ref.Path()
	if c, ok := a.classes[key]; ok {
		return c
	}
	c := a.classifyUncached(ref)
	a.classes[key] = c
	return c
}

func (a *analyzer) classifyUncached(ref *resolve.Reference) classification {
	if d, ok := ref.Resolve(); ok {
		return classification{decl: d, kind: RefResolved}
	}
	segs := ref.Segments()
	if segs[0] == "" || a.externs[segs[0]] {
		return classification{kind: RefExternal}
	}
	if inUse(ref.Node()) && !a.rootResolves(ref.Path()) {
		// 2018 edition: a use path whose root is not in scope names a crate
		return classification{kind: RefExternal}
	}
	if len(segs) == 1 {
		if preludeNames[segs[0]] {
			return classification{kind: RefExternal}
		}
		return classification{kind: RefUnresolved}
	}
	prefix := ref.Path().ChildByField("path")
	if isKeywordSegment(prefix) {
		return classification{kind: RefUnresolved}
	}
	pref, err := a.engine.Reference(prefix)
	if err != nil {
		// `<T as Trait>::f`
		return classification{kind: RefAssociated}
	}
	p := a.classify(pref)
	switch p.kind {
	case RefExternal, RefAssociated:
		return classification{kind: p.kind}
	case RefResolved:
		if p.decl.Kind == resolve.DeclImport {
			return classification{kind: RefExternal}
		}
		if !p.decl.Kind.IsNamespace() {
			return classification{kind: RefAssociated}
		}
	}
	return classification{kind: RefUnresolved}
}

// prefixUnresolved reports whether the path leading to ref's last segment
// is itself unresolved.
func (a *analyzer) prefixUnresolved(ref *resolve.Reference) bool {
	prefix := ref.Path().ChildByField("path")
	if prefix.IsNil() || isKeywordSegment(prefix) {
		return false
	}
	pref, err := a.engine.Reference(prefix)
	if err != nil {
		return false
	}
	return a.classify(pref).kind == RefUnresolved
}

// useLeaf resolves one entry of a `{...}` use list. The entry names an
// import whose full path includes the list prefixes, so it is resolved
// through the import rather than lexically.
func (a *analyzer) useLeaf(n syntax.Node) {
	var nameNode, refNode syntax.Node
	switch n.Kind() {
	case syntax.KindScopedUseList:
		for _, c := range n.ChildByField("list").Children() {
			a.useLeaf(c)
		}
		return
	case syntax.KindUseAsClause:
		nameNode, refNode = n.ChildByField("alias"), n.ChildByField("path")
	case syntax.KindScopedIdentifier:
		nameNode, refNode = n.ChildByField("name"), n
	case syntax.KindIdentifier, syntax.KindSelf:
		nameNode, refNode = n, n
	default:
		return
	}
	imp, ok := a.engine.DeclarationAt(nameNode)
	if !ok || imp.Kind != resolve.DeclImport {
		return
	}
	ref, err := a.engine.Reference(refNode)
	if err != nil {
		return
	}
	target, ok := a.engine.Lookup(nameNode, imp.Name)
	switch {
	case ok && target.Kind != resolve.DeclImport:
		a.add(ref, classification{decl: target, kind: RefResolved})
	case a.rootResolves(n):
		a.add(ref, classification{kind: RefUnresolved})
	default:
		a.add(ref, classification{kind: RefExternal})
	}
}

// macroReferences counts identifiers inside macro arguments that resolve.
// Macro input is not parsed, so nothing inside it is reported unresolved.
func (a *analyzer) macroReferences(tt syntax.Node) {
	for _, id := range astutil.FindAll(tt, syntax.KindIdentifier) {
		ref, err := a.engine.Reference(id)
		if err != nil {
			continue
		}
		if d, ok := ref.Resolve(); ok {
			a.add(ref, classification{decl: d, kind: RefResolved})
		}
	}
}

// rootResolves reports whether the first segment of the use path n
// belongs to resolves lexically.
func (a *analyzer) rootResolves(n syntax.Node) bool {
	use := n
	if !use.Is(syntax.KindUseDeclaration) {
		use = n.Ancestor(syntax.KindUseDeclaration)
	}
	root := use.ChildByField("argument")
	for {
		switch root.Kind() {
		case syntax.KindScopedUseList, syntax.KindScopedIdentifier, syntax.KindUseAsClause:
			next := root.ChildByField("path")
			if next.IsNil() {
				// `::a` or `{a, b}` at the root
				return root.Is(syntax.KindScopedUseList)
			}
			root = next
			continue
		case syntax.KindUseWildcard:
			root = root.Child(0)
			continue
		}
		break
	}
	if root.IsNil() || isKeywordSegment(root) {
		return true
	}
	_, ok := a.engine.Lookup(root, root.Text())
	return ok
}

func isKeywordSegment(n syntax.Node) bool {
	return n.Is(syntax.KindCrate, syntax.KindSuper, syntax.KindSelf)
}

func inUse(n syntax.Node) bool {
	return n.Is(syntax.KindUseDeclaration) || !n.Ancestor(syntax.KindUseDeclaration).IsNil()
}
