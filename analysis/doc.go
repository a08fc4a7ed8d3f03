// Copyright © 2024 The rsresolve authors

package analysis

import (
	"strings"

	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// Signature returns the source text that introduces d: the header of an
// item with a body, the whole item when it has none, otherwise the line
// declaring its name.
func Signature(d resolve.Decl) string {
	if d.NameNode.IsNil() {
		return ""
	}
	switch d.Kind {
	case resolve.DeclFunction, resolve.DeclModule, resolve.DeclStruct, resolve.DeclEnum,
		resolve.DeclUnion, resolve.DeclTrait:
		if body := d.Node.ChildByField("body"); !body.IsNil() {
			r := syntax.TextRange{Start: d.Node.Start(), End: body.Start()}
			return astutil.CollapseSpace(d.Node.Tree().TextOf(r))
		}
		return strings.TrimSuffix(astutil.CollapseSpace(d.Node.Text()), ";")
	}
	tree := d.NameNode.Tree()
	line, _ := tree.Position(d.NameNode.Start())
	return strings.TrimSpace(tree.Line(line))
}

// DocComment returns the text of the outer doc comments (`///`) directly
// preceding item, one line per comment.
func DocComment(item syntax.Node) string {
	var lines []string
	for c := item.PrevSibling(); c.Kind() == syntax.KindLineComment; c = c.PrevSibling() {
		text, ok := strings.CutPrefix(c.Text(), "///")
		if !ok || strings.HasPrefix(text, "/") {
			break
		}
		lines = append(lines, strings.TrimSpace(text))
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}
