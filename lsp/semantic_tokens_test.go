// Copyright © 2024 The rsresolve authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/rstest"
)

func tokenAt(tokens []rawToken, line, char int) (rawToken, bool) {
	for _, tok := range tokens {
		if tok.line == line && tok.startChar == char {
			return tok, true
		}
	}
	return rawToken{}, false
}

func TestSemanticTokens_Classify(t *testing.T) {
	src := "// note\nfn add(a: i32) -> i32 {\n    let b = a;\n    println!(\"{}\", b);\n    b\n}\n"
	tree := rstest.Parse(t, src)
	tokens := semanticTokens(tree, analysis.Analyze(tree, nil))

	tests := []struct {
		name      string
		line      int
		char      int
		length    int
		tokenType int
		modifiers int
	}{
		{"comment", 0, 0, 7, semTokenComment, 0},
		{"function definition", 1, 3, 3, semTokenFunction, semModDefinition},
		{"parameter definition", 1, 7, 1, semTokenParameter, semModDefinition},
		{"let definition", 2, 8, 1, semTokenVariable, semModDefinition},
		{"parameter use", 2, 12, 1, semTokenParameter, 0},
		{"external macro", 3, 4, 7, semTokenMacro, semModDefaultLibrary},
		{"use in macro", 3, 18, 1, semTokenVariable, 0},
		{"tail use", 4, 4, 1, semTokenVariable, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, ok := tokenAt(tokens, tt.line, tt.char)
			require.True(t, ok, "no token at %d:%d", tt.line, tt.char)
			assert.Equal(t, tt.length, tok.length)
			assert.Equal(t, tt.tokenType, tok.tokenType)
			assert.Equal(t, tt.modifiers, tok.modifiers)
		})
	}
}

func TestSemanticTokens_Sorted(t *testing.T) {
	tree := rstest.Parse(t, "fn a() {}\nfn b() { a(); }\n")
	tokens := semanticTokens(tree, analysis.Analyze(tree, nil))
	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1], tokens[i]
		assert.True(t, prev.line < cur.line || prev.line == cur.line && prev.startChar < cur.startChar)
	}
}

func TestSemanticTokensFull(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, testURI, "fn main() {}\n")
	result, err := s.textDocumentSemanticTokensFull(mockContext(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []protocol.UInteger{0, 3, 4, semTokenFunction, semModDefinition}, result.Data)
}

func TestDeltaEncode(t *testing.T) {
	tokens := []rawToken{
		{line: 0, startChar: 3, length: 4, tokenType: semTokenFunction, modifiers: semModDefinition},
		{line: 0, startChar: 10, length: 1, tokenType: semTokenVariable},
		{line: 2, startChar: 4, length: 2, tokenType: semTokenMacro},
	}
	assert.Equal(t, []protocol.UInteger{
		0, 3, 4, semTokenFunction, semModDefinition,
		0, 7, 1, semTokenVariable, 0,
		2, 4, 2, semTokenMacro, 0,
	}, deltaEncode(tokens))
}

func TestSemanticTokenLegend(t *testing.T) {
	legend := semanticTokenLegend()
	assert.Equal(t, "function", legend.TokenTypes[semTokenFunction])
	assert.Equal(t, "comment", legend.TokenTypes[semTokenComment])
	assert.Equal(t, "enumMember", legend.TokenTypes[semTokenEnumMember])
	assert.Equal(t, []string{"definition", "defaultLibrary"}, legend.TokenModifiers)
}
