// Copyright © 2024 The rsresolve authors

/*
Package query parses the location and path queries accepted on the command
line.

	query := path '@' pos | pos | path
	path  := '::'? seg ('::' seg)*
	pos   := LINE ':' COL

Lines and columns are 1-based; columns count bytes.
*/
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"

	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// ErrSyntax is returned for a query that does not match the grammar.
var ErrSyntax = errors.New("invalid query")

// Query is a parsed query. A path written with a leading `::` has an empty
// first segment.
type Query struct {
	Path []string
	Line int // zero when the query has no position
	Col  int
}

// HasPath reports whether the query names a path.
func (q Query) HasPath() bool { return len(q.Path) > 0 }

// HasPos reports whether the query carries a position.
func (q Query) HasPos() bool { return q.Line > 0 }

// PathString returns the path as written.
func (q Query) PathString() string {
	return strings.Join(q.Path, "::")
}

func (q Query) String() string {
	switch {
	case q.HasPath() && q.HasPos():
		return fmt.Sprintf("%s@%d:%d", q.PathString(), q.Line, q.Col)
	case q.HasPos():
		return fmt.Sprintf("%d:%d", q.Line, q.Col)
	default:
		return q.PathString()
	}
}

// Offset returns the byte offset of the query position in tree. A query
// without a position maps to the end of the file.
func (q Query) Offset(tree *syntax.Tree) (int, error) {
	if !q.HasPos() {
		return len(tree.Source()), nil
	}
	if q.Line > tree.LineCount() {
		return 0, fmt.Errorf("%s: line %d out of range (file has %d lines)", tree.Filename(), q.Line, tree.LineCount())
	}
	return tree.Offset(q.Line-1, q.Col-1), nil
}

// Eval resolves the path of q with engine e. Without a position the path
// is resolved at file scope.
func (q Query) Eval(e *resolve.Engine, tree *syntax.Tree) (resolve.Decl, bool, error) {
	if !q.HasPath() {
		return resolve.Decl{}, false, fmt.Errorf("%w: %q has no path", ErrSyntax, q.String())
	}
	offset, err := q.Offset(tree)
	if err != nil {
		return resolve.Decl{}, false, err
	}
	at := tree.Root()
	if q.HasPos() {
		at = tree.NodeAt(offset)
	}
	d, ok := e.LookupPath(at, q.Path, offset)
	return d, ok, nil
}

type position struct {
	line, col int
}

// Parse parses a query.
func Parse(s string) (Query, error) {
	text := []byte(strings.TrimSpace(s))
	if len(text) == 0 {
		return Query{}, fmt.Errorf("%w: empty", ErrSyntax)
	}
	root, scanner := newQueryParser()(parsec.NewScanner(text))
	if root == nil {
		return Query{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	_, scanner = scanner.SkipWS()
	if !scanner.Endof() {
		return Query{}, fmt.Errorf("%w: unexpected text at column %d of %q", ErrSyntax, scanner.GetCursor()+1, s)
	}

	var (
		q      Query
		hasPos = true
	)
	switch v := root.(type) {
	case Query:
		q = v
	case position:
		q = Query{Line: v.line, Col: v.col}
	case []string:
		q, hasPos = Query{Path: v}, false
	default:
		return Query{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if hasPos && (q.Line < 1 || q.Col < 1) {
		return Query{}, fmt.Errorf("%w: lines and columns start at 1", ErrSyntax)
	}
	return q, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Query {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}

func newQueryParser() parsec.Parser {
	sep := parsec.Atom("::", "SEP")
	at := parsec.Atom("@", "AT")
	colon := parsec.Atom(":", "COLON")
	seg := parsec.Token(`(?:r#)?[A-Za-z_][A-Za-z0-9_]*`, "SEG")
	number := parsec.Token(`[0-9]+`, "NUMBER")

	tail := parsec.Kleene(segments, parsec.And(lastNode, sep, seg))
	rooted := parsec.And(pathNode(true), sep, seg, tail)
	relative := parsec.And(pathNode(false), seg, tail)
	path := parsec.OrdChoice(nil, rooted, relative)
	pos := parsec.And(positionNode, number, colon, number)
	located := parsec.And(locatedNode, path, at, pos)
	return parsec.OrdChoice(nil, located, pos, path)
}

func lastNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return nodes[len(nodes)-1]
}

func segments(nodes []parsec.ParsecNode) parsec.ParsecNode {
	segs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		segs = append(segs, terminal(n))
	}
	return segs
}

func pathNode(rooted bool) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		var path []string
		if rooted {
			path = append(path, "")
			nodes = nodes[1:]
		}
		path = append(path, terminal(nodes[0]))
		if tail, ok := nodes[1].([]string); ok {
			path = append(path, tail...)
		}
		return path
	}
}

func positionNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	line, _ := strconv.Atoi(terminal(nodes[0]))
	col, _ := strconv.Atoi(terminal(nodes[2]))
	return position{line: line, col: col}
}

func locatedNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	path, _ := nodes[0].([]string)
	pos, _ := nodes[2].(position)
	return Query{Path: path, Line: pos.line, Col: pos.col}
}

func terminal(n parsec.ParsecNode) string {
	if t, ok := n.(*parsec.Terminal); ok {
		return t.GetValue()
	}
	return ""
}
