// Copyright © 2024 The rsresolve authors

package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/syntax"
)

// textDocumentCodeAction handles the textDocument/codeAction request.
// It returns quick-fix actions for diagnostics in the requested range.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	_, span := s.startSpan("textDocument/codeAction", params.TextDocument.URI, &params.Range.Start)
	// If the client only wants specific kinds, check we support them.
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, protocol.CodeActionKindQuickFix) {
		endSpan(span, false, nil)
		return nil, nil
	}
	tree, res, ok := s.document(params.TextDocument.URI)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}

	uri := params.TextDocument.URI
	var actions []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		// Only handle diagnostics from our lint source.
		if diag.Source == nil || *diag.Source != lintSource || diag.Code == nil {
			continue
		}
		analyzer := fmt.Sprintf("%v", diag.Code.Value)
		switch analyzer {
		case lint.AnalyzerUnusedBinding.Name:
			actions = append(actions, prefixUnderscoreAction(uri, diag))
		case lint.AnalyzerUnresolvedName.Name:
			actions = append(actions, importActions(uri, tree, res, diag)...)
		}
		actions = append(actions, suppressLintAction(uri, tree, diag, analyzer))
	}

	endSpan(span, len(actions) > 0, nil)
	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

func quickFix(title, uri string, diag protocol.Diagnostic, edits ...protocol.TextEdit) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       title,
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{uri: edits},
		},
	}
}

// prefixUnderscoreAction marks an unused binding as intentionally unused.
func prefixUnderscoreAction(uri string, diag protocol.Diagnostic) protocol.CodeAction {
	at := diag.Range.Start
	return quickFix("Prefix with an underscore", uri, diag, protocol.TextEdit{
		Range:   protocol.Range{Start: at, End: at},
		NewText: "_",
	})
}

// importActions offers a use declaration for each item of the file named
// like the unresolved name but declared in a nested module.
func importActions(uri string, tree *syntax.Tree, res *analysis.Result, diag protocol.Diagnostic) []protocol.CodeAction {
	u := unresolvedAt(tree, res, diag.Range.Start)
	if u == nil || strings.Contains(u.Path, "::") {
		return nil
	}
	var actions []protocol.CodeAction
	at := useInsertPosition(tree)
	for _, sym := range analysis.FileSymbols(tree) {
		if sym.Name != u.Name || sym.Container == "" {
			continue
		}
		path := "crate::" + sym.Container + "::" + sym.Name
		actions = append(actions, quickFix(fmt.Sprintf("Import `%s`", path), uri, diag, protocol.TextEdit{
			Range:   protocol.Range{Start: at, End: at},
			NewText: fmt.Sprintf("use %s;\n", path),
		}))
	}
	return actions
}

func unresolvedAt(tree *syntax.Tree, res *analysis.Result, pos protocol.Position) *analysis.UnresolvedRef {
	offset := offsetAt(tree, pos)
	for _, u := range res.Unresolved {
		if u.Range.Start == offset {
			return u
		}
	}
	return nil
}

// useInsertPosition finds where a new use declaration goes: after the last
// top-level use declaration, or at the start of the file.
func useInsertPosition(tree *syntax.Tree) protocol.Position {
	last := -1
	for _, c := range tree.Root().Children() {
		if c.Is(syntax.KindUseDeclaration) {
			last, _ = tree.Position(c.End())
		}
	}
	return protocol.Position{Line: safeUint(last + 1), Character: 0}
}

// suppressLintAction creates a code action that adds a // nolint:analyzer
// comment to the end of the diagnostic line.
func suppressLintAction(uri string, tree *syntax.Tree, diag protocol.Diagnostic, analyzer string) protocol.CodeAction {
	line := int(diag.Range.Start.Line)
	insertPos := protocol.Position{Line: diag.Range.Start.Line, Character: safeUint(utf16Len(tree.Line(line)))}
	return quickFix(fmt.Sprintf("Suppress with // nolint:%s", analyzer), uri, diag, protocol.TextEdit{
		Range:   protocol.Range{Start: insertPos, End: insertPos},
		NewText: " // nolint:" + analyzer,
	})
}
