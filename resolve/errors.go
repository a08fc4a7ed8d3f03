// Copyright © 2024 The rsresolve authors

package resolve

import "errors"

// A name that resolves to nothing is not an error; Resolve reports it with
// a false second result. The errors below are contract failures.
var (
	// ErrDetached is returned when a reference is requested for a node that
	// belongs to no tree.
	ErrDetached = errors.New("resolve: node is detached from any tree")

	// ErrNotReference is returned when a node cannot refer to a declaration.
	ErrNotReference = errors.New("resolve: node is not a reference")

	// ErrUnsupportedLanguage is returned for trees of another language.
	ErrUnsupportedLanguage = errors.New("resolve: unsupported language")

	// ErrUnimplemented marks operations that exist in the API but are not
	// built. Callers must not read it as "nothing found".
	ErrUnimplemented = errors.New("resolve: not implemented")
)
