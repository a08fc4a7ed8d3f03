// Copyright © 2024 The rsresolve authors

package lint

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// AnalyzerUnresolvedName reports names that resolve to nothing.
var AnalyzerUnresolvedName = &Analyzer{
	Name:     "unresolved-name",
	Doc:      "Report names that resolve to no declaration.\n\nPaths rooted in std, core, alloc or a configured external crate, prelude names, and associated items such as `Vec::new` are not reported. Only the first unresolved segment of a path is reported.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, u := range pass.Semantics.Unresolved {
			if u.InUse {
				continue
			}
			if _, ok := laterLet(u.Ref); ok {
				continue // reported by use-before-let
			}
			pass.Reportf(u.Range, "unresolved name `%s`", u.Path)
		}
		return nil
	},
}

// AnalyzerUnresolvedImport reports use declarations whose path resolves to
// nothing.
var AnalyzerUnresolvedImport = &Analyzer{
	Name:     "unresolved-import",
	Doc:      "Report `use` paths that resolve to no declaration.\n\nImports of external crates are not reported.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, u := range pass.Semantics.Unresolved {
			if u.InUse {
				pass.Reportf(u.Range, "unresolved import `%s`", u.Path)
			}
		}
		return nil
	},
}

// AnalyzerUseBeforeLet reports names used before the let statement of the
// enclosing block that binds them.
var AnalyzerUseBeforeLet = &Analyzer{
	Name:     "use-before-let",
	Doc:      "Report a name used before the `let` that binds it.\n\nA let binding is visible only after its statement ends, so a use earlier in the block, or inside the binding's own initializer, does not see it.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, u := range pass.Semantics.Unresolved {
			if u.InUse {
				continue
			}
			let, ok := laterLet(u.Ref)
			if !ok {
				continue
			}
			d := pass.Diagnostic(u.Range, fmt.Sprintf("`%s` is used before its let binding", u.Name))
			pass.ReportWithNotes(d, fmt.Sprintf("`%s` is bound on line %d", u.Name, astutil.LineOf(let.NameNode)))
		}
		return nil
	},
}

// AnalyzerUnusedBinding reports local bindings that are never referenced.
var AnalyzerUnusedBinding = &Analyzer{
	Name:     "unused-binding",
	Doc:      "Report let bindings, parameters and pattern bindings that are never referenced.\n\nNames starting with an underscore are exempt, as are `self` and the parameters of functions without a body.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, sym := range pass.Semantics.Symbols {
			if !sym.IsBinding() || sym.References > 0 || sym.IsIgnored() || sym.Name == "self" {
				continue
			}
			if sym.Kind == resolve.DeclParam && sym.Scope.Anchor().Is(syntax.KindFunctionSignatureItem) {
				continue
			}
			// `None =>` and `MAX =>` name a variant or constant, not a binding
			if r, _ := utf8.DecodeRuneInString(sym.Name); unicode.IsUpper(r) {
				continue
			}
			if capturedByFormat(sym) {
				continue
			}
			d := pass.Diagnostic(sym.NameNode.Range(), fmt.Sprintf("unused %s `%s`", sym.Kind, sym.Name))
			pass.ReportWithNotes(d, fmt.Sprintf("if this is intentional, prefix it with an underscore: `_%s`", sym.Name))
		}
		return nil
	},
}

// AnalyzerShadowedBinding reports let bindings that hide a binding of an
// enclosing scope.
var AnalyzerShadowedBinding = &Analyzer{
	Name:     "shadowed-binding",
	Doc:      "Report a `let` that shadows a binding of an enclosing scope.\n\nRebinding a name in the same block (`let x = x.trim();`) is idiomatic and not reported.",
	Severity: SeverityInfo,
	Run: func(pass *Pass) error {
		for _, sym := range pass.Semantics.Symbols {
			if sym.Kind != resolve.DeclLet || sym.IsIgnored() {
				continue
			}
			outer, ok := resolve.ParentScope(sym.Scope)
			if !ok {
				continue
			}
			prev, ok := pass.Engine.LookupFrom(outer, sym.Name, sym.NameNode.Start())
			if !ok || !prev.Kind.IsBinding() {
				continue
			}
			pass.Reportf(sym.NameNode.Range(), "`%s` shadows the %s on line %d",
				sym.Name, prev.Kind, astutil.LineOf(prev.NameNode))
		}
		return nil
	},
}

// laterLet finds a let binding for the unqualified name ref that is
// declared by an enclosing block but not yet visible at ref.
func laterLet(ref *resolve.Reference) (resolve.Decl, bool) {
	if ref == nil || ref.IsQualified() {
		return resolve.Decl{}, false
	}
	name, at := ref.Name(), ref.Path().Start()
	for s := range resolve.ScopeChain(ref.Node()) {
		for d := range resolve.Declarations(s) {
			if d.Kind == resolve.DeclLet && d.Name == name && d.Visible.Start > at {
				return d, true
			}
		}
		if s.Kind() == resolve.ScopeFunction {
			break
		}
	}
	return resolve.Decl{}, false
}

// capturedByFormat reports whether a string literal in sym's visible range
// captures it inline, as in `println!("{x}")`.
func capturedByFormat(sym *analysis.Symbol) bool {
	found := false
	astutil.Inspect(sym.Scope.Anchor(), func(n syntax.Node) bool {
		if found || !n.Range().Overlaps(sym.Visible) {
			return false
		}
		if n.Type() == "string_literal" {
			text := n.Text()
			found = strings.Contains(text, "{"+sym.Name+"}") || strings.Contains(text, "{"+sym.Name+":")
			return false
		}
		return true
	})
	return found
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s (%s)\n", a.Name, a.Severity)
		fmt.Fprintf(&b, "%s\n\n", indent.String(wordwrap.String(a.Doc, 72), 4))
	}
	return b.String()
}
