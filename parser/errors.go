// Copyright © 2024 The rsresolve authors

package parser

import "errors"

// ErrNoCgo is returned when the binary was built without cgo, which the
// tree-sitter runtime requires.
var ErrNoCgo = errors.New("parser: tree-sitter requires cgo")
