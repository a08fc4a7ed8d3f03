// Copyright © 2024 The rsresolve authors

// Package refactor contains source transformations built on the resolver.
package refactor

import (
	"fmt"

	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// Edit replaces Range with NewText.
type Edit struct {
	Range   syntax.TextRange
	NewText string
}

// InlineHandler replaces a declaration's uses with its definition. Only the
// capability checks are built; Inline itself reports ErrUnimplemented.
type InlineHandler struct {
	// Engine resolves the element to inline. Nil means resolve.Default().
	Engine *resolve.Engine
}

func (h *InlineHandler) engine() *resolve.Engine {
	if h.Engine == nil {
		return resolve.Default()
	}
	return h.Engine
}

// EnabledForLanguage reports whether the handler applies to trees of lang.
func (h *InlineHandler) EnabledForLanguage(lang syntax.Language) bool {
	return lang == syntax.LangRust
}

// CanInline reports whether n may be offered for inlining. Every element
// of a supported tree qualifies.
func (h *InlineHandler) CanInline(n syntax.Node) bool {
	return !n.IsNil() && h.EnabledForLanguage(n.Tree().Language())
}

// Target returns the declaration inlining n would act on: the declaration
// n names, or the one n refers to.
func (h *InlineHandler) Target(n syntax.Node) (resolve.Decl, bool) {
	if n.IsNil() {
		return resolve.Decl{}, false
	}
	e := h.engine()
	if d, ok := e.DeclarationAt(n); ok {
		return d, true
	}
	ref, err := e.Reference(n)
	if err != nil {
		return resolve.Decl{}, false
	}
	return e.Resolve(ref)
}

// Inline computes the edits that inline n.
func (h *InlineHandler) Inline(n syntax.Node) ([]Edit, error) {
	if n.IsNil() {
		return nil, resolve.ErrDetached
	}
	if lang := n.Tree().Language(); !h.EnabledForLanguage(lang) {
		return nil, fmt.Errorf("inline: %w: %s", resolve.ErrUnsupportedLanguage, lang)
	}
	if d, ok := h.Target(n); ok {
		return nil, fmt.Errorf("inline %s `%s`: %w", d.Kind, d.Name, resolve.ErrUnimplemented)
	}
	return nil, fmt.Errorf("inline %s: %w", n.Type(), resolve.ErrUnimplemented)
}
