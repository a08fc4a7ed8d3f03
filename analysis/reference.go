// Copyright © 2024 The rsresolve authors

package analysis

import (
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// RefKind classifies the outcome of resolving a reference.
type RefKind int

const (
	RefResolved   RefKind = iota // resolved to a declaration in the file
	RefExternal                  // names something outside the file (std, a dependency)
	RefAssociated                // item of a type or trait (`S::new`)
	RefUnresolved                // nothing matches
)

func (k RefKind) String() string {
	switch k {
	case RefResolved:
		return "resolved"
	case RefExternal:
		return "external"
	case RefAssociated:
		return "associated"
	case RefUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Reference records a name usage and what it resolved to.
type Reference struct {
	Ref  *resolve.Reference
	Kind RefKind
	Decl resolve.Decl // zero unless Kind is RefResolved

	// InUse is set for paths inside use declarations.
	InUse bool
}

// Range returns the range of the referenced name.
func (r *Reference) Range() syntax.TextRange {
	return r.Ref.NameRange()
}

// UnresolvedRef records a usage that could not be resolved. Paths whose
// prefix is already unresolved are not reported again.
type UnresolvedRef struct {
	Name  string
	Path  string
	Range syntax.TextRange
	InUse bool
	Ref   *resolve.Reference
}
