// Copyright © 2024 The rsresolve authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	_, span := s.startSpan("textDocument/references", params.TextDocument.URI, &params.Position)
	tree, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	d, ok := res.DeclAt(offset)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}

	var locs []protocol.Location
	if params.Context.IncludeDeclaration && !d.NameNode.IsNil() {
		locs = append(locs, declLocation(params.TextDocument.URI, d))
	}
	for _, ref := range res.RefsTo(d) {
		locs = append(locs, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: toLSPRange(tree, ref.Range()),
		})
	}
	endSpan(span, len(locs) > 0, nil)
	return locs, nil
}

// textDocumentDocumentHighlight handles the textDocument/documentHighlight
// request. The declaring name is a write; every reference is a read.
func (s *Server) textDocumentDocumentHighlight(_ *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	_, span := s.startSpan("textDocument/documentHighlight", params.TextDocument.URI, &params.Position)
	tree, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	d, ok := res.DeclAt(offset)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}

	write := protocol.DocumentHighlightKindWrite
	read := protocol.DocumentHighlightKindRead
	var out []protocol.DocumentHighlight
	if !d.NameNode.IsNil() && d.NameNode.Tree() == tree {
		out = append(out, protocol.DocumentHighlight{
			Range: toLSPRange(tree, d.NameNode.Range()),
			Kind:  &write,
		})
	}
	for _, ref := range res.RefsTo(d) {
		out = append(out, protocol.DocumentHighlight{
			Range: toLSPRange(tree, ref.Range()),
			Kind:  &read,
		})
	}
	endSpan(span, len(out) > 0, nil)
	return out, nil
}
