// Copyright © 2024 The rsresolve authors

package lsp

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// Semantic token type indices — must match the order in semanticTokenLegend().
const (
	semTokenNamespace = iota
	semTokenType
	semTokenTypeParameter
	semTokenParameter
	semTokenVariable
	semTokenFunction
	semTokenMacro
	semTokenEnumMember
	semTokenInterface
	semTokenStruct
	semTokenEnum
	semTokenComment
)

// Semantic token modifier bit flags — must match the order in semanticTokenLegend().
const (
	semModDefinition = 1 << iota
	semModDefaultLibrary
)

// semanticTokenLegend returns the legend that the client uses to decode tokens.
func semanticTokenLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes: []string{
			"namespace",     // 0
			"type",          // 1
			"typeParameter", // 2
			"parameter",     // 3
			"variable",      // 4
			"function",      // 5
			"macro",         // 6
			"enumMember",    // 7
			"interface",     // 8
			"struct",        // 9
			"enum",          // 10
			"comment",       // 11
		},
		TokenModifiers: []string{
			"definition",     // bit 0
			"defaultLibrary", // bit 1
		},
	}
}

// rawToken is an intermediate representation before delta encoding.
type rawToken struct {
	line      int // 0-based
	startChar int // 0-based, UTF-16 units
	length    int
	tokenType int
	modifiers int
}

// textDocumentSemanticTokensFull handles the textDocument/semanticTokens/full request.
func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	_, span := s.startSpan("textDocument/semanticTokens/full", params.TextDocument.URI, nil)
	tree, res, ok := s.document(params.TextDocument.URI)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	tokens := semanticTokens(tree, res)
	endSpan(span, len(tokens) > 0, nil)
	return &protocol.SemanticTokens{Data: deltaEncode(tokens)}, nil
}

// semanticTokens classifies every declared name, every reference and every
// comment of a file.
func semanticTokens(tree *syntax.Tree, res *analysis.Result) []rawToken {
	// Keyed by start offset; a reference overrides a definition at the same
	// place (the leaf of a use declaration is both).
	byStart := make(map[int]rawToken)
	add := func(r syntax.TextRange, typ, mods int) {
		line, col := tree.UTF16Position(r.Start)
		endLine, endCol := tree.UTF16Position(r.End)
		if endLine != line || endCol <= col {
			return
		}
		byStart[r.Start] = rawToken{line: line, startChar: col, length: endCol - col, tokenType: typ, modifiers: mods}
	}

	for _, sym := range res.Symbols {
		if sym.NameNode.IsNil() || sym.Kind == resolve.DeclImport {
			continue
		}
		add(sym.NameNode.Range(), declTokenType(sym.Kind), semModDefinition)
	}
	for _, ref := range res.References {
		switch ref.Kind {
		case analysis.RefResolved:
			add(ref.Range(), declTokenType(ref.Decl.Kind), 0)
		case analysis.RefExternal:
			add(ref.Range(), externalTokenType(ref), semModDefaultLibrary)
		}
	}

	tokens := make([]rawToken, 0, len(byStart))
	for _, tok := range byStart {
		tokens = append(tokens, tok)
	}
	for _, c := range astutil.Comments(tree) {
		line, col := tree.UTF16Position(c.Start())
		// Tokens may not span lines; only the first line of a block comment
		// is highlighted.
		length := utf16Len(tree.Line(line)) - col
		if endLine, endCol := tree.UTF16Position(c.End()); endLine == line {
			length = endCol - col
		}
		if length > 0 {
			tokens = append(tokens, rawToken{line: line, startChar: col, length: length, tokenType: semTokenComment})
		}
	}

	// Sort by position (line, then character).
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].line != tokens[j].line {
			return tokens[i].line < tokens[j].line
		}
		return tokens[i].startChar < tokens[j].startChar
	})
	return tokens
}

// declTokenType converts a resolve.DeclKind to a semantic token type index.
func declTokenType(kind resolve.DeclKind) int {
	switch kind {
	case resolve.DeclFunction:
		return semTokenFunction
	case resolve.DeclModule, resolve.DeclCrate, resolve.DeclImport, resolve.DeclGlob:
		return semTokenNamespace
	case resolve.DeclStruct, resolve.DeclUnion:
		return semTokenStruct
	case resolve.DeclEnum:
		return semTokenEnum
	case resolve.DeclTrait:
		return semTokenInterface
	case resolve.DeclTypeAlias:
		return semTokenType
	case resolve.DeclMacro:
		return semTokenMacro
	case resolve.DeclVariant:
		return semTokenEnumMember
	case resolve.DeclTypeParam:
		return semTokenTypeParameter
	case resolve.DeclParam:
		return semTokenParameter
	default:
		return semTokenVariable
	}
}

// externalTokenType guesses the token type of a name defined outside the
// file from its syntax: macro invocations, capitalized types and the
// leading segments of paths.
func externalTokenType(ref *analysis.Reference) int {
	if ref.Ref.Node().Parent().Is(syntax.KindMacroInvocation) {
		return semTokenMacro
	}
	name := ref.Ref.Name()
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsUpper(r) || ref.Ref.Node().Is(syntax.KindTypeIdentifier) {
		return semTokenType
	}
	if ref.Ref.IsQualified() || ref.InUse {
		return semTokenNamespace
	}
	return semTokenFunction
}

// deltaEncode converts sorted raw tokens into the LSP delta-encoded format.
// Each token is 5 integers: [deltaLine, deltaStartChar, length, tokenType, tokenModifiers].
func deltaEncode(tokens []rawToken) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	prevLine := 0
	prevChar := 0
	for _, tok := range tokens {
		deltaLine := tok.line - prevLine
		deltaChar := tok.startChar
		if deltaLine == 0 {
			deltaChar = tok.startChar - prevChar
		}
		data = append(data,
			safeUint(deltaLine),
			safeUint(deltaChar),
			safeUint(tok.length),
			safeUint(tok.tokenType),
			safeUint(tok.modifiers),
		)
		prevLine = tok.line
		prevChar = tok.startChar
	}
	return data
}
