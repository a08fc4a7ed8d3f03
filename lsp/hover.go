// Copyright © 2024 The rsresolve authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	_, span := s.startSpan("textDocument/hover", params.TextDocument.URI, &params.Position)
	tree, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}

	var (
		content string
		rng     syntax.TextRange
	)
	if ref := res.RefAt(offset); ref != nil {
		content, rng = buildRefHover(ref), ref.Range()
	} else if sym := res.SymbolAt(offset); sym != nil {
		content, rng = buildHoverContent(sym.Decl), sym.NameNode.Range()
	}
	if content == "" {
		endSpan(span, false, nil)
		return nil, nil
	}

	r := toLSPRange(tree, rng)
	endSpan(span, true, nil)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
		Range: &r,
	}, nil
}

// buildRefHover builds hover text for a reference.
func buildRefHover(ref *analysis.Reference) string {
	switch ref.Kind {
	case analysis.RefResolved:
		return buildHoverContent(ref.Decl)
	case analysis.RefExternal:
		return fmt.Sprintf("**external** `%s`", ref.Ref.Path().Text())
	case analysis.RefAssociated:
		return fmt.Sprintf("**associated item** `%s`", ref.Ref.Path().Text())
	default:
		return fmt.Sprintf("**unresolved** `%s`", ref.Ref.Path().Text())
	}
}

// buildHoverContent builds Markdown hover text for a declaration.
func buildHoverContent(d resolve.Decl) string {
	var sb strings.Builder

	// Header: **kind** `name`
	fmt.Fprintf(&sb, "**%s** `%s`", d.Kind, d.Name)

	if sig := analysis.Signature(d); sig != "" {
		fmt.Fprintf(&sb, "\n\n```rust\n%s\n```", sig)
	}
	if doc := analysis.DocComment(d.Node); doc != "" {
		fmt.Fprintf(&sb, "\n\n%s", doc)
	}
	if line := astutil.LineOf(d.NameNode); line > 0 {
		fmt.Fprintf(&sb, "\n\n*Defined on line %d*", line)
	}
	return sb.String()
}
