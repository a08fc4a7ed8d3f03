// Copyright © 2024 The rsresolve authors

// Package resolve answers "which declaration does this name refer to?" for
// Rust syntax trees.
//
// A reference is resolved by walking the scopes enclosing it from the
// innermost outward. Each scope is asked for its declarations, which are
// derived from the tree on demand; nothing is cached, so resolving against
// a freshly parsed tree never observes stale state and any number of
// goroutines may resolve against the same tree at once.
//
//	ref, err := resolve.NewReference(node)
//	if err != nil {
//		return err
//	}
//	decl, ok := ref.Resolve()
package resolve

import (
	"github.com/luthersystems/rsresolve/syntax"
	"github.com/luthersystems/rsresolve/testcrumb"
)

// DefaultMaxImportDepth bounds how many imports a single resolution may
// follow.
const DefaultMaxImportDepth = 32

// Engine resolves references. The zero value is not usable; use
// NewEngine. An Engine holds only configuration and is safe for concurrent
// use.
type Engine struct {
	rec            *testcrumb.Recorder
	maxImportDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder reports the branches the engine takes to rec.
func WithRecorder(rec *testcrumb.Recorder) Option {
	return func(e *Engine) { e.rec = rec }
}

// WithMaxImportDepth bounds a single resolution to following n imports.
func WithMaxImportDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxImportDepth = n
		}
	}
}

// NewEngine returns an engine configured by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{maxImportDepth: DefaultMaxImportDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Default returns the engine used by the package level functions.
func Default() *Engine { return defaultEngine }

// query is the state of one resolution. active holds the imports being
// resolved so that an import never resolves through itself.
type query struct {
	e      *Engine
	active map[syntax.Node]bool
	hops   int
}

func (e *Engine) newQuery() *query {
	return &query{e: e, active: make(map[syntax.Node]bool)}
}

func (q *query) enter(n syntax.Node) bool {
	if q.active[n] {
		return false
	}
	q.active[n] = true
	return true
}

func (q *query) leave(n syntax.Node) {
	delete(q.active, n)
}

// Lookup resolves a single name as if it were written at node at.
func (e *Engine) Lookup(at syntax.Node, name string) (Decl, bool) {
	q := e.newQuery()
	d, ok := q.lookup(at, name, at.Start())
	if !ok {
		return Decl{}, false
	}
	return q.follow(d), true
}

// LookupFrom resolves name as if written at offset inside scope s,
// searching s and the scopes around it.
func (e *Engine) LookupFrom(s Scope, name string, offset int) (Decl, bool) {
	if s.IsNil() {
		return Decl{}, false
	}
	q := e.newQuery()
	d, ok := q.lookupFrom(s, name, offset)
	if !ok {
		return Decl{}, false
	}
	return q.follow(d), true
}

// LookupPath resolves a path given by its segment names as if written at
// offset inside node at. A leading empty segment stands for the crate
// root, as a path written with a leading `::`.
func (e *Engine) LookupPath(at syntax.Node, names []string, offset int) (Decl, bool) {
	if at.IsNil() {
		return Decl{}, false
	}
	segs := make([]segment, 0, len(names))
	for i, name := range names {
		kind := syntax.KindIdentifier
		switch {
		case i == 0 && (name == "" || name == "crate"):
			kind = syntax.KindCrate
		case name == "self":
			kind = syntax.KindSelf
		case name == "super":
			kind = syntax.KindSuper
		}
		segs = append(segs, segment{name: name, kind: kind})
	}
	return e.newQuery().resolveSegments(at, segs, offset)
}

// Resolve resolves ref. It reports false when nothing matches.
func (e *Engine) Resolve(ref *Reference) (Decl, bool) {
	return e.newQuery().resolveSegments(ref.path, ref.segs, ref.path.Start())
}

// lookup searches the scopes enclosing at, innermost first, for name. The
// first scope with a visible match wins.
func (q *query) lookup(at syntax.Node, name string, offset int) (Decl, bool) {
	return q.lookupFrom(ScopeFor(at), name, offset)
}

func (q *query) lookupFrom(start Scope, name string, offset int) (Decl, bool) {
	crossedItem := false
	for s, more := start, true; more; s, more = ParentScope(s) {
		// a const or static initializer cannot see the locals around it
		if !crossedItem && inConstItem(s, offset) {
			crossedItem = true
		}
		if d, ok := q.lookupIn(s, name, offset, crossedItem); ok {
			return d, true
		}
		// a nested fn cannot see the locals or generics of the function
		// around it
		if s.Kind() == ScopeFunction {
			crossedItem = true
		}
	}
	return Decl{}, false
}

// inConstItem reports whether a const or static item lies between offset
// and the anchor of scope s.
func inConstItem(s Scope, offset int) bool {
	for n := s.anchor.Tree().NodeAt(offset); !n.IsNil() && n != s.anchor; n = n.Parent() {
		if n.Is(syntax.KindConstItem, syntax.KindStaticItem) {
			return true
		}
	}
	return false
}

// lookupIn searches a single scope. Among bindings the closest preceding
// one wins; otherwise the first item in document order wins. Glob imports
// are consulted only when nothing in the scope is declared explicitly.
func (q *query) lookupIn(s Scope, name string, offset int, itemsOnly bool) (Decl, bool) {
	var (
		best  Decl
		found bool
		globs []Decl
	)
	for d := range Declarations(s) {
		if d.Kind == DeclGlob {
			globs = append(globs, d)
			continue
		}
		if d.Name != name || q.active[d.Node] {
			continue
		}
		if itemsOnly && d.Kind == DeclTypeParam && s.Kind() == ScopeFunction {
			crumbItemBoundary.Hit(q.e.rec)
			continue
		}
		if d.Kind.IsBinding() {
			if itemsOnly {
				crumbItemBoundary.Hit(q.e.rec)
				continue
			}
			if !d.VisibleAt(offset) {
				crumbNotYetVisible.Hit(q.e.rec)
				continue
			}
			if !found || !best.Kind.IsBinding() || d.NameNode.Start() > best.NameNode.Start() {
				best, found = d, true
			}
			continue
		}
		if !found {
			best, found = d, true
		}
	}
	if found {
		return best, true
	}
	for _, g := range globs {
		if d, ok := q.globMember(g, name); ok {
			return d, true
		}
	}
	return Decl{}, false
}

// DeclarationAt returns the declaration whose name is n, if n declares a
// name rather than referring to one.
func (e *Engine) DeclarationAt(n syntax.Node) (Decl, bool) {
	if n.IsNil() {
		return Decl{}, false
	}
	if p := n.Parent(); p.Is(syntax.KindEnumVariant) && p.ChildByField("name") == n {
		enum := p.Ancestor(syntax.KindEnumItem)
		for d := range Members(Decl{Kind: DeclEnum, Node: enum}) {
			if d.NameNode == n {
				return d, true
			}
		}
	}
	depth := 0
	for s := range ScopeChain(n) {
		for d := range Declarations(s) {
			if d.NameNode == n {
				return d, true
			}
		}
		// a name is declared by its own scope or the one just outside
		if depth++; depth == 2 {
			break
		}
	}
	return Decl{}, false
}

// Lookup resolves name as if written at node at using the default engine.
func Lookup(at syntax.Node, name string) (Decl, bool) {
	return defaultEngine.Lookup(at, name)
}

// DeclarationAt reports the declaration named by n using the default
// engine.
func DeclarationAt(n syntax.Node) (Decl, bool) {
	return defaultEngine.DeclarationAt(n)
}
