// Copyright © 2024 The rsresolve authors

package resolve

import (
	"strings"

	"github.com/luthersystems/rsresolve/syntax"
)

// segment is one component of a path. The crate root of a path written
// with a leading `::` is a segment of kind KindCrate with an empty name and
// a nil node.
type segment struct {
	name string
	kind syntax.Kind
	node syntax.Node
}

func (s segment) isRoot() bool {
	return s.kind == syntax.KindCrate
}

// unwrapPath strips the syntax around a path that does not change what it
// names: parentheses and generic arguments.
func unwrapPath(n syntax.Node) syntax.Node {
	for {
		switch n.Kind() {
		case syntax.KindParenthesizedExpression:
			inner := syntax.Node{}
			for _, c := range n.Children() {
				if !c.Kind().IsComment() {
					inner = c
					break
				}
			}
			if inner.IsNil() {
				return n
			}
			n = inner
		case syntax.KindGenericFunction:
			n = n.ChildByField("function")
		case syntax.KindGenericType:
			n = n.ChildByField("type")
		default:
			return n
		}
	}
}

// pathSegments splits a path into its segments. It reports false when n
// is not a path.
func pathSegments(n syntax.Node) ([]segment, bool) {
	n = unwrapPath(n)
	switch n.Kind() {
	case syntax.KindIdentifier, syntax.KindTypeIdentifier, syntax.KindSelf,
		syntax.KindCrate, syntax.KindSuper, syntax.KindMetavariable:
		return []segment{{name: n.Text(), kind: n.Kind(), node: n}}, true
	case syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier:
		name := n.ChildByField("name")
		if name.IsNil() {
			return nil, false
		}
		var segs []segment
		if prefix := n.ChildByField("path"); !prefix.IsNil() {
			var ok bool
			segs, ok = pathSegments(prefix)
			if !ok {
				// `<T as Trait>::x` and friends
				return nil, false
			}
		} else if strings.HasPrefix(n.Text(), "::") {
			segs = []segment{{kind: syntax.KindCrate}}
		}
		last, ok := pathSegments(name)
		if !ok {
			return nil, false
		}
		return append(segs, last...), true
	}
	return nil, false
}

// importSegments returns the full path imported by a use tree leaf,
// including the prefixes of every enclosing `a::{...}` list.
func importSegments(leaf syntax.Node) ([]segment, bool) {
	var segs []segment
	ok := true
	switch leaf.Kind() {
	case syntax.KindUseAsClause:
		segs, ok = pathSegments(leaf.ChildByField("path"))
	case syntax.KindUseWildcard:
		for _, c := range leaf.Children() {
			if !c.Kind().IsComment() {
				segs, ok = pathSegments(c)
				break
			}
		}
	default:
		segs, ok = pathSegments(leaf)
	}
	if !ok {
		return nil, false
	}
	for p := leaf.Parent(); !p.IsNil() && !p.Is(syntax.KindUseDeclaration); p = p.Parent() {
		if !p.Is(syntax.KindScopedUseList) {
			continue
		}
		prefixNode := p.ChildByField("path")
		if prefixNode.IsNil() {
			continue
		}
		prefix, ok := pathSegments(prefixNode)
		if !ok {
			return nil, false
		}
		segs = append(prefix, segs...)
	}
	if n := len(segs); n > 1 && segs[n-1].kind == syntax.KindSelf {
		segs = segs[:n-1]
	}
	return segs, true
}

// resolveSegments resolves a path whose first segment is looked up from
// node at. Bindings are only visible when declared before offset.
func (q *query) resolveSegments(at syntax.Node, segs []segment, offset int) (Decl, bool) {
	if len(segs) == 0 {
		return Decl{}, false
	}
	cur, ok := q.anchor(at, segs[0], offset, len(segs) == 1)
	if !ok {
		return Decl{}, false
	}
	for _, seg := range segs[1:] {
		ns := q.follow(cur)
		if !ns.Kind.IsNamespace() {
			crumbNotNamespace.Hit(q.e.rec)
			return Decl{}, false
		}
		switch seg.kind {
		case syntax.KindSuper:
			if ns.Kind != DeclModule {
				crumbNotNamespace.Hit(q.e.rec)
				return Decl{}, false
			}
			p, ok := ParentModule(Scope{anchor: ns.Node})
			if !ok {
				crumbMissingSegment.Hit(q.e.rec)
				return Decl{}, false
			}
			cur = moduleDecl(p)
			continue
		case syntax.KindSelf:
			cur = ns
			continue
		}
		cur, ok = q.member(ns, seg.name)
		if !ok {
			crumbMissingSegment.Hit(q.e.rec)
			return Decl{}, false
		}
	}
	return q.follow(cur), true
}

// anchor resolves the first segment of a path.
func (q *query) anchor(at syntax.Node, seg segment, offset int, alone bool) (Decl, bool) {
	switch seg.kind {
	case syntax.KindCrate:
		return moduleDecl(RootScope(at)), true
	case syntax.KindSuper:
		p, ok := ParentModule(ScopeFor(at))
		if !ok {
			return Decl{}, false
		}
		return moduleDecl(p), true
	case syntax.KindSelf:
		if !alone {
			return moduleDecl(EnclosingModule(ScopeFor(at))), true
		}
	}
	return q.lookup(at, seg.name, offset)
}

// member finds name among the members of namespace ns, then among the
// targets of its glob imports.
func (q *query) member(ns Decl, name string) (Decl, bool) {
	for d := range Members(ns) {
		if d.Name == name && !q.active[d.Node] {
			return d, true
		}
	}
	if ns.Kind != DeclModule {
		return Decl{}, false
	}
	for g := range moduleItems(ns) {
		if g.Kind != DeclGlob {
			continue
		}
		if d, ok := q.globMember(g, name); ok {
			return d, true
		}
	}
	return Decl{}, false
}

// globMember looks name up in the namespace a glob import brings in.
func (q *query) globMember(g Decl, name string) (Decl, bool) {
	if !q.enter(g.Node) {
		return Decl{}, false
	}
	defer q.leave(g.Node)
	segs, ok := importSegments(g.Node)
	if !ok {
		return Decl{}, false
	}
	ns, ok := q.resolveSegments(g.Node, segs, g.Node.Start())
	if !ok || !ns.Kind.IsNamespace() {
		return Decl{}, false
	}
	d, ok := q.member(ns, name)
	if ok {
		crumbGlobMatch.Hit(q.e.rec)
	}
	return d, ok
}

// follow chases d through imports to the declaration it names. An import
// whose target cannot be found is returned as is.
func (q *query) follow(d Decl) Decl {
	var entered []syntax.Node
	defer func() {
		for _, n := range entered {
			q.leave(n)
		}
	}()
	for d.Kind == DeclImport {
		if q.hops >= q.e.maxImportDepth {
			crumbImportDepth.Hit(q.e.rec)
			return d
		}
		if !q.enter(d.Node) {
			crumbImportCycle.Hit(q.e.rec)
			return d
		}
		entered = append(entered, d.Node)
		q.hops++
		target, ok := q.resolveImport(d)
		if !ok {
			crumbImportUnresolved.Hit(q.e.rec)
			return d
		}
		crumbImportFollowed.Hit(q.e.rec)
		d = target
	}
	return d
}

// resolveImport resolves the path an import names. The caller must have
// entered d so the import cannot find itself.
func (q *query) resolveImport(d Decl) (Decl, bool) {
	segs, ok := importSegments(d.Node)
	if !ok {
		return Decl{}, false
	}
	return q.resolveSegments(d.Node, segs, d.Node.Start())
}
