// Copyright © 2024 The rsresolve authors

package resolve

import (
	"fmt"

	"github.com/luthersystems/rsresolve/syntax"
)

// DeclKind classifies a declaration.
type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclModule
	DeclStruct
	DeclEnum
	DeclUnion
	DeclTrait
	DeclTypeAlias
	DeclConst
	DeclStatic
	DeclMacro
	DeclVariant
	DeclCrate
	DeclTypeParam
	DeclImport
	DeclGlob
	DeclLet
	DeclParam
	DeclPatternBinding
)

var declKindNames = [...]string{
	DeclFunction:       "function",
	DeclModule:         "module",
	DeclStruct:         "struct",
	DeclEnum:           "enum",
	DeclUnion:          "union",
	DeclTrait:          "trait",
	DeclTypeAlias:      "type alias",
	DeclConst:          "const",
	DeclStatic:         "static",
	DeclMacro:          "macro",
	DeclVariant:        "variant",
	DeclCrate:          "crate",
	DeclTypeParam:      "type parameter",
	DeclImport:         "import",
	DeclGlob:           "glob import",
	DeclLet:            "let binding",
	DeclParam:          "parameter",
	DeclPatternBinding: "pattern binding",
}

func (k DeclKind) String() string {
	if k < 0 || int(k) >= len(declKindNames) {
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
	return declKindNames[k]
}

// IsBinding reports whether the kind is a local binding. Bindings only
// become visible at a point in the source; every other declaration is
// visible throughout its scope.
func (k DeclKind) IsBinding() bool {
	switch k {
	case DeclLet, DeclParam, DeclPatternBinding:
		return true
	}
	return false
}

// IsNamespace reports whether later path segments may be looked up inside
// a declaration of this kind.
func (k DeclKind) IsNamespace() bool {
	switch k {
	case DeclModule, DeclEnum, DeclCrate:
		return true
	}
	return false
}

// Decl is a named declaration contributed by a scope. Decl values are
// comparable; two Decls are equal when they describe the same name at the
// same place.
type Decl struct {
	Name string
	Kind DeclKind

	// Node is the declaring construct: the item, the let statement, the
	// parameter, or the use tree leaf for imports.
	Node syntax.Node

	// NameNode is the identifier that introduces Name. It is nil for the
	// synthetic crate root module.
	NameNode syntax.Node

	// Scope is the scope that contributed the declaration.
	Scope Scope

	// Visible is the region where a binding may be referenced. It is empty
	// for declarations that are visible throughout their scope.
	Visible syntax.TextRange
}

// IsZero reports whether d is the zero Decl.
func (d Decl) IsZero() bool {
	return d.Node.IsNil() && d.Name == ""
}

// VisibleAt reports whether d can be referenced from offset.
func (d Decl) VisibleAt(offset int) bool {
	if !d.Kind.IsBinding() {
		return true
	}
	return offset >= d.Visible.Start && offset < d.Visible.End
}

// Range returns the range of the declaring name, or of the declaring node
// when there is no name.
func (d Decl) Range() syntax.TextRange {
	if !d.NameNode.IsNil() {
		return d.NameNode.Range()
	}
	return d.Node.Range()
}

func (d Decl) String() string {
	if d.IsZero() {
		return "<no decl>"
	}
	at := d.NameNode
	if at.IsNil() {
		at = d.Node
	}
	return fmt.Sprintf("%s %s at %s", d.Kind, d.Name, at)
}
