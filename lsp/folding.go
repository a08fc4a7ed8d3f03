// Copyright © 2024 The rsresolve authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/syntax"
)

// foldableTypes are the grammar types of bracketed bodies that fold.
var foldableTypes = map[string]bool{
	"block":                  true,
	"declaration_list":       true,
	"field_declaration_list": true,
	"enum_variant_list":      true,
	"match_block":            true,
	"use_list":               true,
	"token_tree":             true,
}

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line bodies and runs of consecutive
// line comments.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	_, span := s.startSpan("textDocument/foldingRange", params.TextDocument.URI, nil)
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		endSpan(span, false, nil)
		return nil, nil
	}
	tree, _ := doc.snapshot()
	if tree == nil {
		endSpan(span, false, nil)
		return nil, nil
	}
	ranges := foldingRanges(tree)
	endSpan(span, len(ranges) > 0, nil)
	return ranges, nil
}

func foldingRanges(tree *syntax.Tree) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	region := string(protocol.FoldingRangeKindRegion)
	astutil.Inspect(tree.Root(), func(n syntax.Node) bool {
		if !foldableTypes[n.Type()] {
			return true
		}
		startLine, _ := tree.Position(n.Start())
		endLine, _ := tree.Position(n.End())
		// Keep the closing brace visible.
		if endLine-1 > startLine {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(startLine),
				EndLine:   safeUint(endLine - 1),
				Kind:      &region,
			})
		}
		return true
	})
	return append(ranges, commentFoldingRanges(tree)...)
}

// commentFoldingRanges produces a folding range for each run of two or
// more line comments on consecutive lines.
func commentFoldingRanges(tree *syntax.Tree) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	kind := string(protocol.FoldingRangeKindComment)
	emit := func(start, end int) {
		if end > start {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(start),
				EndLine:   safeUint(end),
				Kind:      &kind,
			})
		}
	}

	blockStart, prev := -1, -2
	for _, c := range astutil.Comments(tree) {
		line, _ := tree.Position(c.Start())
		if c.Kind() == syntax.KindBlockComment {
			endLine, _ := tree.Position(c.End())
			emit(line, endLine)
			continue
		}
		if line != prev+1 {
			emit(blockStart, prev)
			blockStart = line
		}
		prev = line
	}
	emit(blockStart, prev)
	return ranges
}
