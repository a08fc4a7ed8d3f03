// Copyright © 2024 The rsresolve authors

package analysis

import (
	"strings"

	"github.com/luthersystems/rsresolve/resolve"
)

// Symbol is a declaration found in the analyzed file.
type Symbol struct {
	resolve.Decl

	// References counts the references resolved to the declaration.
	References int
}

// IsIgnored reports whether the name opts out of unused checks.
func (s *Symbol) IsIgnored() bool {
	return strings.HasPrefix(s.Name, "_")
}

// IsBinding reports whether the symbol is a local binding.
func (s *Symbol) IsBinding() bool {
	return s.Kind.IsBinding()
}
