// Copyright © 2024 The rsresolve authors

package resolve

import (
	"fmt"
	"strings"

	"github.com/luthersystems/rsresolve/syntax"
)

// Element is a syntax node viewed as something that may refer to a
// declaration.
type Element interface {
	Node() syntax.Node
	IsReference() bool
}

type plainElement struct {
	node syntax.Node
}

func (e plainElement) Node() syntax.Node { return e.node }
func (e plainElement) IsReference() bool { return false }

// ElementAt wraps n as a Reference when it is one and as a plain element
// otherwise.
func ElementAt(n syntax.Node) Element {
	if ref, err := defaultEngine.Reference(n); err == nil {
		return ref
	}
	return plainElement{node: n}
}

// Reference is a path expression that names a declaration: `x`, `Foo`,
// `a::b::c`, `(x)` or `Vec::<u8>::new`. A Reference does not cache its
// resolution.
type Reference struct {
	engine *Engine
	elem   syntax.Node
	path   syntax.Node
	segs   []segment
}

// NewReference wraps n using the default engine.
func NewReference(n syntax.Node) (*Reference, error) {
	return defaultEngine.Reference(n)
}

// Reference wraps n as a reference resolved by e. It fails with
// ErrDetached for a nil node, ErrUnsupportedLanguage for a tree of another
// language and ErrNotReference when n is not a path or is the name of a
// declaration, such as a method in an impl block.
func (e *Engine) Reference(n syntax.Node) (*Reference, error) {
	if n.IsNil() {
		return nil, ErrDetached
	}
	if lang := n.Tree().Language(); lang != syntax.LangRust {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	if declaresName(n) {
		return nil, fmt.Errorf("%w: %s names a declaration", ErrNotReference, n)
	}
	path := unwrapPath(n)
	segs, ok := pathSegments(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotReference, n)
	}
	return &Reference{engine: e, elem: n, path: path, segs: segs}, nil
}

// Node returns the wrapped element.
func (r *Reference) Node() syntax.Node { return r.elem }

// IsReference always reports true.
func (r *Reference) IsReference() bool { return true }

// Path returns the path node inside the element, with parentheses and
// generic arguments stripped.
func (r *Reference) Path() syntax.Node { return r.path }

// PathRange returns the range of the whole path.
func (r *Reference) PathRange() syntax.TextRange { return r.path.Range() }

// NameRange returns the range of the referenced name: the last segment of
// the path.
func (r *Reference) NameRange() syntax.TextRange {
	return r.segs[len(r.segs)-1].node.Range()
}

// RangeInElement returns NameRange relative to the start of the element.
func (r *Reference) RangeInElement() syntax.TextRange {
	return r.NameRange().Relative(r.elem.Range())
}

// Name returns the referenced name.
func (r *Reference) Name() string {
	return r.segs[len(r.segs)-1].name
}

// Segments returns the names of the path segments. A leading `::` is
// reported as an empty segment.
func (r *Reference) Segments() []string {
	out := make([]string, len(r.segs))
	for i, s := range r.segs {
		out[i] = s.name
	}
	return out
}

// IsQualified reports whether the path has more than one segment.
func (r *Reference) IsQualified() bool { return len(r.segs) > 1 }

// Resolve returns the declaration r refers to. It reports false when
// nothing matches.
func (r *Reference) Resolve() (Decl, bool) {
	return r.engine.Resolve(r)
}

// Variants would list the names that could complete r. Completion is not
// built; the error wraps ErrUnimplemented.
func (r *Reference) Variants() ([]Decl, error) {
	return nil, fmt.Errorf("completion of %q: %w", r.Name(), ErrUnimplemented)
}

func (r *Reference) String() string {
	return "reference " + strings.Join(r.Segments(), "::") + " at " + r.elem.String()
}

// declaresName reports whether identifier n sits where a declaration puts
// its name. The name of a path segment and of a struct literal refer to
// something, and so does the alias of an import.
func declaresName(n syntax.Node) bool {
	if !n.Is(syntax.KindIdentifier, syntax.KindTypeIdentifier) {
		return false
	}
	p := n.Parent()
	switch n.Field() {
	case "name":
		return !p.Is(syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier) &&
			p.Type() != "struct_expression"
	case "alias":
		return !p.Is(syntax.KindUseAsClause)
	}
	return false
}

// ReferenceAt returns the reference under byte offset in tree. A cursor on
// a segment selects the path up to and including that segment. Names that
// declare something rather than refer to it are not references, except in
// use declarations.
func (e *Engine) ReferenceAt(tree *syntax.Tree, offset int) (*Reference, error) {
	n := tree.NodeAt(offset)
	if n.IsNil() {
		return nil, ErrDetached
	}
	if !n.Kind().IsPathSegment() && !n.Is(syntax.KindMetavariable) {
		return nil, fmt.Errorf("%w: %s", ErrNotReference, n)
	}
	if d, ok := e.DeclarationAt(n); ok && d.Kind != DeclImport {
		return nil, fmt.Errorf("%w: %s declares %s", ErrNotReference, n, d.Name)
	}
	if p := n.Parent(); p.Is(syntax.KindScopedIdentifier, syntax.KindScopedTypeIdentifier) && n.Field() == "name" {
		n = p
	}
	return e.Reference(n)
}

// ReferenceAt returns the reference under offset using the default engine.
func ReferenceAt(tree *syntax.Tree, offset int) (*Reference, error) {
	return defaultEngine.ReferenceAt(tree, offset)
}
