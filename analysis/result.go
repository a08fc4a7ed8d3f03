// Copyright © 2024 The rsresolve authors

package analysis

import (
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// ScopeAt returns the innermost scope at offset.
func (r *Result) ScopeAt(offset int) resolve.Scope {
	n := r.Tree.NodeAt(offset)
	if n.IsNil() {
		return resolve.RootScope(r.Tree.Root())
	}
	return resolve.ScopeFor(n)
}

// SymbolFor returns the symbol recorded for d, or nil.
func (r *Result) SymbolFor(d resolve.Decl) *Symbol {
	return r.symbols[d]
}

// SymbolAt returns the symbol whose name covers offset, or nil.
func (r *Result) SymbolAt(offset int) *Symbol {
	for _, sym := range r.Symbols {
		if sym.NameNode.IsNil() {
			continue
		}
		if sym.NameNode.Range().Contains(offset) {
			return sym
		}
	}
	return nil
}

// RefAt returns the reference whose name covers offset, or nil. When
// ranges nest the narrowest reference wins.
func (r *Result) RefAt(offset int) *Reference {
	var best *Reference
	for _, ref := range r.References {
		rng := ref.Range()
		if !rng.Contains(offset) {
			continue
		}
		if best == nil || rng.Len() < best.Range().Len() ||
			rng.Len() == best.Range().Len() && ref.Ref.PathRange().Len() < best.Ref.PathRange().Len() {
			best = ref
		}
	}
	return best
}

// RefsTo returns every reference resolved to d in document order.
func (r *Result) RefsTo(d resolve.Decl) []*Reference {
	var out []*Reference
	for _, ref := range r.References {
		if ref.Kind == RefResolved && ref.Decl == d {
			out = append(out, ref)
		}
	}
	return out
}

// DeclAt returns the declaration at offset: the one named there, or the
// one the reference there resolves to.
func (r *Result) DeclAt(offset int) (resolve.Decl, bool) {
	if ref := r.RefAt(offset); ref != nil {
		if ref.Kind == RefResolved {
			return ref.Decl, true
		}
		return resolve.Decl{}, false
	}
	if sym := r.SymbolAt(offset); sym != nil {
		return sym.Decl, true
	}
	return resolve.Decl{}, false
}

// Occurrences returns the ranges of d's name and of every reference to it.
func (r *Result) Occurrences(d resolve.Decl) []syntax.TextRange {
	var out []syntax.TextRange
	if !d.NameNode.IsNil() && d.NameNode.Tree() == r.Tree {
		out = append(out, d.NameNode.Range())
	}
	for _, ref := range r.RefsTo(d) {
		out = append(out, ref.Range())
	}
	return out
}
