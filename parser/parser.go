// Copyright © 2024 The rsresolve authors

//go:build cgo

// Package parser builds syntax trees from Rust source using tree-sitter.
//
// The tree-sitter concrete syntax tree is lowered into a syntax.Tree arena
// keeping only named nodes. Anonymous tokens (punctuation, keywords) are
// dropped; their extent is still recoverable from the parent's range.
// Tree-sitter recovers from errors, so incomplete code still yields a tree
// with ERROR nodes where the input could not be understood.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/luthersystems/rsresolve/syntax"
)

// fieldNames are the grammar fields recorded on lowered nodes.
var fieldNames = []string{
	"name",
	"pattern",
	"body",
	"parameters",
	"type_parameters",
	"path",
	"alias",
	"argument",
	"list",
	"value",
	"function",
	"arguments",
	"type",
	"trait",
	"left",
	"condition",
	"consequence",
	"alternative",
	"macro",
	"field",
	"return_type",
}

// Parser parses Rust source. A Parser is not safe for concurrent use; use
// one per goroutine or the package-level Parse.
type Parser struct {
	ts *sitter.Parser
}

// New returns a Rust parser.
func New() *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(rust.GetLanguage())
	return &Parser{ts: ts}
}

// Parse parses src with a fresh parser.
func Parse(ctx context.Context, filename string, src []byte) (*syntax.Tree, error) {
	return New().Parse(ctx, filename, src)
}

// Parse parses src into a syntax tree named filename.
func (p *Parser) Parse(ctx context.Context, filename string, src []byte) (*syntax.Tree, error) {
	tsTree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%s: parse error: %w", filename, err)
	}
	root := tsTree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%s: parser returned no tree", filename)
	}
	b := syntax.NewBuilder(syntax.LangRust, filename, src)
	lower(b, root, "")
	tree, err := b.Tree()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tree, nil
}

type span struct {
	start, end uint32
	typ        string
}

func spanOf(n *sitter.Node) span {
	return span{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

func lower(b *syntax.Builder, n *sitter.Node, field string) {
	b.Open(n.Type(), field, int(n.StartByte()))
	fields := childFields(n)
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil || !c.IsNamed() || c.IsMissing() {
			continue
		}
		lower(b, c, fields[spanOf(c)])
	}
	b.Close(int(n.EndByte()))
}

// childFields maps the direct children of n that occupy a known field to
// that field's name.
func childFields(n *sitter.Node) map[span]string {
	if n.ChildCount() == 0 {
		return nil
	}
	fields := make(map[span]string)
	for _, f := range fieldNames {
		c := n.ChildByFieldName(f)
		if c == nil {
			continue
		}
		sp := spanOf(c)
		if _, ok := fields[sp]; !ok {
			fields[sp] = f
		}
	}
	return fields
}
