// Copyright © 2024 The rsresolve authors

package lsp

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

var (
	errNoSymbol     = errors.New("no symbol at position")
	errNotOpen      = errors.New("document not found")
	errInvalidIdent = errors.New("not a valid identifier")
)

var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true, "unsafe": true,
	"use": true, "where": true, "while": true,
}

// renameable reports why d cannot be renamed, or nil.
func renameable(d resolve.Decl) error {
	switch {
	case d.NameNode.IsNil():
		return fmt.Errorf("cannot rename the crate root")
	case d.Name == "self":
		return fmt.Errorf("cannot rename self")
	case d.Kind == resolve.DeclImport && !d.Node.Is(syntax.KindUseAsClause):
		return fmt.Errorf("cannot rename import %s: rename the imported item instead", d.Name)
	}
	return nil
}

// validIdent reports whether name can replace an identifier.
func validIdent(name string) bool {
	if name == "" || name == "_" || rustKeywords[name] {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// textDocumentPrepareRename validates that the symbol under the cursor
// is renameable and returns its range.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	_, span := s.startSpan("textDocument/prepareRename", params.TextDocument.URI, &params.Position)
	tree, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	d, ok := res.DeclAt(offset)
	// Per LSP, prepareRename returns null (not error) for non-renameable
	// symbols.
	if !ok || renameable(d) != nil {
		endSpan(span, false, nil)
		return nil, nil
	}

	rng := d.NameNode.Range()
	if ref := res.RefAt(offset); ref != nil {
		rng = ref.Range()
	}
	endSpan(span, true, nil)
	return &protocol.RangeWithPlaceholder{
		Range:       toLSPRange(tree, rng),
		Placeholder: d.Name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	_, span := s.startSpan("textDocument/rename", params.TextDocument.URI, &params.Position)
	tree, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, errNotOpen)
		return nil, errNotOpen
	}
	if !validIdent(params.NewName) {
		err := fmt.Errorf("%w: %q", errInvalidIdent, params.NewName)
		endSpan(span, false, err)
		return nil, err
	}
	d, ok := res.DeclAt(offset)
	if !ok {
		endSpan(span, false, errNoSymbol)
		return nil, errNoSymbol
	}
	if err := renameable(d); err != nil {
		endSpan(span, false, err)
		return nil, err
	}

	uri := params.TextDocument.URI
	var edits []protocol.TextEdit
	for _, r := range res.Occurrences(d) {
		edits = append(edits, protocol.TextEdit{
			Range:   toLSPRange(tree, r),
			NewText: params.NewName,
		})
	}
	s.log.WithField("uri", uri).Debugf("rename %s to %s: %d edits", d.Name, params.NewName, len(edits))
	endSpan(span, true, nil)
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
	}, nil
}
