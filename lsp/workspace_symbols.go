// Copyright © 2024 The rsresolve authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
)

// workspaceSymbol handles the workspace/symbol request.
// It returns the items across the workspace that match the query string.
// An empty query returns all symbols. Open documents take precedence over
// the index, which reflects the files on disk.
func (s *Server) workspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	_, span := s.startSpan("workspace/symbol", s.rootURI, nil)
	s.ensureWorkspaceIndex()
	query := strings.ToLower(params.Query)

	var results []protocol.SymbolInformation
	open := make(map[string]bool)
	for _, doc := range s.docs.All() {
		tree, _ := doc.snapshot()
		if tree == nil {
			continue
		}
		open[uriToPath(doc.URI)] = true
		for _, sym := range analysis.FileSymbols(tree) {
			if matchesQuery(sym, query) {
				results = append(results, symbolInfo(doc.URI, sym))
			}
		}
	}

	s.indexMu.RLock()
	for _, sym := range s.index {
		if open[sym.File] || !matchesQuery(sym, query) {
			continue
		}
		results = append(results, symbolInfo(pathToURI(sym.File), sym))
	}
	s.indexMu.RUnlock()

	endSpan(span, len(results) > 0, nil)
	return results, nil
}

// symbolInfo converts an analysis.WorkspaceSymbol to a
// protocol.SymbolInformation.
func symbolInfo(uri string, sym analysis.WorkspaceSymbol) protocol.SymbolInformation {
	start := protocol.Position{Line: safeUint(sym.Line), Character: safeUint(sym.Col)}
	end := start
	end.Character += safeUint(utf16Len(sym.Name))

	var container *string
	if sym.Container != "" {
		c := sym.Container
		container = &c
	}
	return protocol.SymbolInformation{
		Name:          sym.Name,
		Kind:          mapSymbolKind(sym.Kind),
		Location:      protocol.Location{URI: uri, Range: protocol.Range{Start: start, End: end}},
		ContainerName: container,
	}
}

// matchesQuery performs case-insensitive substring matching against the
// name and the qualified name. An empty query matches everything.
func matchesQuery(sym analysis.WorkspaceSymbol, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	if strings.Contains(strings.ToLower(sym.Name), lowerQuery) {
		return true
	}
	return sym.Container != "" && strings.Contains(strings.ToLower(sym.Container+"::"+sym.Name), lowerQuery)
}
