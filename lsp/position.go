// Copyright © 2024 The rsresolve authors

package lsp

import (
	"net/url"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// toLSPPosition converts a byte offset to a 0-based LSP position counted in
// UTF-16 units.
func toLSPPosition(tree *syntax.Tree, offset int) protocol.Position {
	line, col := tree.UTF16Position(offset)
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// toLSPRange converts a byte range to an LSP range.
func toLSPRange(tree *syntax.Tree, r syntax.TextRange) protocol.Range {
	return protocol.Range{
		Start: toLSPPosition(tree, r.Start),
		End:   toLSPPosition(tree, r.End),
	}
}

// offsetAt converts an LSP position to a byte offset in tree.
func offsetAt(tree *syntax.Tree, pos protocol.Position) int {
	return tree.OffsetUTF16(int(pos.Line), int(pos.Character))
}

// safeUint converts an int to protocol.UInteger. Values out of range
// become zero.
func safeUint(n int) protocol.UInteger {
	u, err := safecast.Conv[protocol.UInteger](n)
	if err != nil {
		return 0
	}
	return u
}

// documentAt returns the parsed and analyzed state of an open document
// together with the byte offset of pos. ok is false when the document is
// not open or could not be parsed.
func (s *Server) documentAt(uri string, pos protocol.Position) (tree *syntax.Tree, res *analysis.Result, offset int, ok bool) {
	tree, res, ok = s.document(uri)
	if !ok {
		return nil, nil, 0, false
	}
	return tree, res, offsetAt(tree, pos), true
}

// document returns the analyzed state of an open document.
func (s *Server) document(uri string) (*syntax.Tree, *analysis.Result, bool) {
	doc := s.docs.Get(uri)
	if doc == nil {
		return nil, nil, false
	}
	s.ensureAnalysis(doc)
	tree, res := doc.snapshot()
	if tree == nil || res == nil {
		return nil, nil, false
	}
	return tree, res, true
}

// declLocation returns the location of d's name in the document uri.
func declLocation(uri string, d resolve.Decl) protocol.Location {
	return protocol.Location{
		URI:   uri,
		Range: toLSPRange(d.Node.Tree(), d.Range()),
	}
}

// mapSymbolKind converts a resolve.DeclKind to an LSP SymbolKind.
func mapSymbolKind(kind resolve.DeclKind) protocol.SymbolKind {
	switch kind {
	case resolve.DeclFunction:
		return protocol.SymbolKindFunction
	case resolve.DeclModule, resolve.DeclCrate:
		return protocol.SymbolKindModule
	case resolve.DeclStruct, resolve.DeclUnion:
		return protocol.SymbolKindStruct
	case resolve.DeclEnum:
		return protocol.SymbolKindEnum
	case resolve.DeclVariant:
		return protocol.SymbolKindEnumMember
	case resolve.DeclTrait:
		return protocol.SymbolKindInterface
	case resolve.DeclTypeAlias:
		return protocol.SymbolKindClass
	case resolve.DeclConst:
		return protocol.SymbolKindConstant
	case resolve.DeclStatic:
		return protocol.SymbolKindVariable
	case resolve.DeclMacro:
		return protocol.SymbolKindFunction
	case resolve.DeclTypeParam:
		return protocol.SymbolKindTypeParameter
	case resolve.DeclImport, resolve.DeclGlob:
		return protocol.SymbolKindNamespace
	default:
		return protocol.SymbolKindVariable
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	rest, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	if p, err := url.PathUnescape(rest); err == nil {
		return filepath.FromSlash(p)
	}
	return rest
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
