// Copyright © 2024 The rsresolve authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	_, span := s.startSpan("textDocument/definition", params.TextDocument.URI, &params.Position)
	_, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	d, ok := res.DeclAt(offset)
	// The crate root has no name to navigate to.
	if !ok || d.NameNode.IsNil() {
		endSpan(span, false, nil)
		return nil, nil
	}
	endSpan(span, true, nil)
	return declLocation(params.TextDocument.URI, d), nil
}
