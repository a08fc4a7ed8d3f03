// Copyright © 2024 The rsresolve authors

package lsp

import (
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	_, span := s.startSpan("textDocument/documentSymbol", params.TextDocument.URI, nil)
	tree, _, ok := s.document(params.TextDocument.URI)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	symbols := outline(tree, resolve.RootScope(tree.Root()), tree.Root())
	endSpan(span, len(symbols) > 0, nil)
	// Return as []DocumentSymbol (the preferred hierarchical form).
	return symbols, nil
}

// outline returns the items declared in scope s, whose items live in
// container, as a symbol hierarchy. Impl blocks have no name but still
// appear with their methods.
func outline(tree *syntax.Tree, s resolve.Scope, container syntax.Node) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for d := range resolve.Declarations(s) {
		if d.Kind.IsBinding() || d.NameNode.IsNil() {
			continue
		}
		switch d.Kind {
		case resolve.DeclImport, resolve.DeclGlob, resolve.DeclTypeParam:
			continue
		}
		sym := declSymbol(tree, d)
		switch d.Kind {
		case resolve.DeclModule:
			if body := d.Node.ChildByField("body"); !body.IsNil() {
				sym.Children = outline(tree, resolve.ScopeFor(d.Node), body)
			}
		case resolve.DeclEnum:
			for v := range resolve.Members(d) {
				sym.Children = append(sym.Children, declSymbol(tree, v))
			}
		case resolve.DeclTrait:
			sym.Children = associatedItems(tree, d.Node.ChildByField("body"))
		}
		out = append(out, sym)
	}
	for _, c := range container.Children() {
		if !c.Is(syntax.KindImplItem) {
			continue
		}
		body := c.ChildByField("body")
		name := "impl"
		if !body.IsNil() {
			name = astutil.CollapseSpace(tree.TextOf(syntax.TextRange{Start: c.Start(), End: body.Start()}))
		}
		typ := c.ChildByField("type")
		if typ.IsNil() {
			typ = c
		}
		out = append(out, protocol.DocumentSymbol{
			Name:           name,
			Kind:           protocol.SymbolKindObject,
			Range:          toLSPRange(tree, c.Range()),
			SelectionRange: toLSPRange(tree, typ.Range()),
			Children:       associatedItems(tree, body),
		})
	}
	sortSymbols(out)
	return out
}

// associatedItems lists the functions, constants and types of a trait or
// impl body.
func associatedItems(tree *syntax.Tree, body syntax.Node) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, c := range body.Children() {
		var kind protocol.SymbolKind
		switch c.Kind() {
		case syntax.KindFunctionItem, syntax.KindFunctionSignatureItem:
			kind = protocol.SymbolKindMethod
		case syntax.KindConstItem:
			kind = protocol.SymbolKindConstant
		case syntax.KindTypeItem:
			kind = protocol.SymbolKindTypeParameter
		default:
			continue
		}
		name := c.ChildByField("name")
		if name.IsNil() {
			continue
		}
		detail := strings.TrimSuffix(analysis.Signature(resolve.Decl{
			Name: name.Text(), Kind: resolve.DeclFunction, Node: c, NameNode: name,
		}), ";")
		out = append(out, protocol.DocumentSymbol{
			Name:           name.Text(),
			Detail:         &detail,
			Kind:           kind,
			Range:          toLSPRange(tree, c.Range()),
			SelectionRange: toLSPRange(tree, name.Range()),
		})
	}
	return out
}

func declSymbol(tree *syntax.Tree, d resolve.Decl) protocol.DocumentSymbol {
	sym := protocol.DocumentSymbol{
		Name:           d.Name,
		Kind:           mapSymbolKind(d.Kind),
		Range:          toLSPRange(tree, d.Node.Range()),
		SelectionRange: toLSPRange(tree, d.NameNode.Range()),
	}
	if d.Kind == resolve.DeclFunction {
		detail := analysis.Signature(d)
		sym.Detail = &detail
	}
	return sym
}

func sortSymbols(syms []protocol.DocumentSymbol) {
	sort.SliceStable(syms, func(i, j int) bool {
		a, b := syms[i].Range.Start, syms[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
}
