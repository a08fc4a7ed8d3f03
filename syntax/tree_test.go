// Copyright © 2024 The rsresolve authors

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addSource = "fn add(a) {\n    a\n}\n"

// buildAdd builds the tree of addSource by hand:
//
//	source_file
//	  function_item
//	    identifier (name)     add
//	    parameters            (a)
//	      identifier          a
//	    block (body)          { a }
//	      identifier          a
func buildAdd(t *testing.T) *Tree {
	t.Helper()
	b := NewBuilder(LangRust, "add.rs", []byte(addSource))
	b.Open("source_file", "", 0)
	b.Open("function_item", "", 0)
	b.Leaf("identifier", "name", 3, 6)
	b.Open("parameters", "parameters", 6)
	b.Leaf("identifier", "", 7, 8)
	b.Close(9)
	b.Open("block", "body", 10)
	b.Leaf("identifier", "", 16, 17)
	b.Close(19)
	b.Close(19)
	b.Close(len(addSource))
	tree, err := b.Tree()
	require.NoError(t, err)
	return tree
}

// --- tree ---

func TestTree_Basics(t *testing.T) {
	tree := buildAdd(t)
	assert.Equal(t, LangRust, tree.Language())
	assert.Equal(t, "add.rs", tree.Filename())
	assert.Equal(t, addSource, string(tree.Source()))
	assert.Equal(t, 7, tree.Len())

	root := tree.Root()
	assert.Equal(t, KindSourceFile, root.Kind())
	assert.True(t, root.Parent().IsNil())
	assert.True(t, tree.Node(NoNode).IsNil())
	assert.True(t, tree.Node(99).IsNil())
	assert.Equal(t, root, tree.Node(0))
}

func TestTree_Fields(t *testing.T) {
	fn := buildAdd(t).Root().Child(0)
	require.True(t, fn.Is(KindFunctionItem))

	name := fn.ChildByField("name")
	assert.Equal(t, "add", name.Text())
	assert.Equal(t, "name", name.Field())
	assert.Equal(t, KindBlock, fn.ChildByField("body").Kind())
	assert.True(t, fn.ChildByField("return_type").IsNil())
	assert.Equal(t, KindParameters, fn.ChildOfKind(KindParameters, KindBlock).Kind())
	assert.True(t, fn.ChildOfKind(KindLineComment).IsNil())
	assert.Equal(t, 3, fn.ChildCount())
	assert.True(t, fn.Child(3).IsNil())
	assert.True(t, fn.Child(-1).IsNil())
}

func TestTree_Siblings(t *testing.T) {
	fn := buildAdd(t).Root().Child(0)
	name, params, body := fn.Child(0), fn.Child(1), fn.Child(2)

	assert.Equal(t, params, name.NextSibling())
	assert.Equal(t, name, params.PrevSibling())
	assert.True(t, name.PrevSibling().IsNil())
	assert.True(t, body.NextSibling().IsNil())
	assert.Equal(t, []Node{name, params, body}, fn.Children())
}

func TestTree_Ancestors(t *testing.T) {
	tree := buildAdd(t)
	root := tree.Root()
	fn := root.Child(0)
	use := fn.ChildByField("body").Child(0)

	assert.True(t, root.IsAncestorOf(use))
	assert.True(t, fn.IsAncestorOf(use))
	assert.False(t, use.IsAncestorOf(root))
	assert.False(t, use.IsAncestorOf(use))
	assert.Equal(t, fn, use.Ancestor(KindFunctionItem))
	assert.True(t, use.Ancestor(KindStructItem).IsNil())
}

func TestTree_NodeAt(t *testing.T) {
	tree := buildAdd(t)
	tests := []struct {
		offset int
		typ    string
		text   string
	}{
		{4, "identifier", "add"},
		{6, "parameters", "(a)"}, // starts here, preferred over `add` ending here
		{7, "identifier", "a"},
		{11, "block", "{\n    a\n}"},
		{16, "identifier", "a"},
		{0, "function_item", "fn add(a) {\n    a\n}"},
	}
	for _, tt := range tests {
		n := tree.NodeAt(tt.offset)
		assert.Equal(t, tt.typ, n.Type(), "offset %d", tt.offset)
		assert.Equal(t, tt.text, n.Text(), "offset %d", tt.offset)
	}
	assert.True(t, tree.NodeAt(-1).IsNil())
	assert.True(t, tree.NodeAt(len(addSource)+1).IsNil())
}

func TestNode_String(t *testing.T) {
	fn := buildAdd(t).Root().Child(0)
	assert.Equal(t, "identifier@1:4", fn.ChildByField("name").String())
	assert.Equal(t, "identifier@2:5", fn.ChildByField("body").Child(0).String())
	assert.Equal(t, "<nil>", Node{}.String())
}

func TestNode_Nil(t *testing.T) {
	var n Node
	assert.True(t, n.IsNil())
	assert.Equal(t, "", n.Text())
	assert.Equal(t, 0, n.ChildCount())
	assert.Nil(t, n.Children())
	assert.True(t, n.Parent().IsNil())
	assert.True(t, n.ChildByField("name").IsNil())
	assert.True(t, (*Tree)(nil).Root().IsNil())
}

// --- positions ---

func TestTree_Position(t *testing.T) {
	tree := buildAdd(t)
	assert.Equal(t, 4, tree.LineCount())

	line, col := tree.Position(16)
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)

	line, col = tree.Position(-3)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	line, col = tree.Position(999)
	assert.Equal(t, 3, line)
	assert.Equal(t, 0, col)
}

func TestTree_Offset(t *testing.T) {
	tree := buildAdd(t)
	assert.Equal(t, 16, tree.Offset(1, 4))
	assert.Equal(t, 17, tree.Offset(1, 99), "clamped to line end")
	assert.Equal(t, 12, tree.Offset(1, -2))
	assert.Equal(t, len(addSource), tree.Offset(9, 0))
	assert.Equal(t, 0, tree.Offset(-1, 5))
}

func TestTree_Line(t *testing.T) {
	tree := buildAdd(t)
	assert.Equal(t, "fn add(a) {", tree.Line(0))
	assert.Equal(t, "    a", tree.Line(1))
	assert.Equal(t, "", tree.Line(3))
	assert.Equal(t, "", tree.Line(9))

	crlf := leafTree(t, "a\r\nb")
	assert.Equal(t, "a", crlf.Line(0))
	assert.Equal(t, "b", crlf.Line(1))
	assert.Equal(t, 1, crlf.Offset(0, 5))
}

func TestTree_TextOf(t *testing.T) {
	tree := buildAdd(t)
	assert.Equal(t, "fn", tree.TextOf(TextRange{Start: -5, End: 2}))
	assert.Equal(t, "}\n", tree.TextOf(TextRange{Start: 18, End: 99}))
	assert.Equal(t, "", tree.TextOf(TextRange{Start: 5, End: 3}))
}

func TestTree_UTF16(t *testing.T) {
	src := "let é = \"😀\";\nx"
	tree := leafTree(t, src)

	line, col := tree.UTF16Position(7) // '='
	assert.Equal(t, 0, line)
	assert.Equal(t, 6, col)

	line, col = tree.UTF16Position(14) // closing quote after a surrogate pair
	assert.Equal(t, 0, line)
	assert.Equal(t, 11, col)

	assert.Equal(t, 7, tree.OffsetUTF16(0, 6))
	assert.Equal(t, 14, tree.OffsetUTF16(0, 11))
	assert.Equal(t, 16, tree.OffsetUTF16(0, 99))
	assert.Equal(t, 17, tree.OffsetUTF16(1, 0))
	assert.Equal(t, len(src), tree.OffsetUTF16(5, 0))
	assert.Equal(t, 0, tree.OffsetUTF16(-1, 3))
}

// leafTree builds a tree whose only node is the root.
func leafTree(t *testing.T, src string) *Tree {
	t.Helper()
	b := NewBuilder(LangUnknown, "t.rs", []byte(src))
	b.Leaf("source_file", "", 0, len(src))
	tree, err := b.Tree()
	require.NoError(t, err)
	return tree
}

// --- builder ---

func TestBuilder_Errors(t *testing.T) {
	src := []byte("fn f() {}")

	b := NewBuilder(LangRust, "f.rs", src)
	_, err := b.Tree()
	assert.ErrorContains(t, err, "empty tree")

	b = NewBuilder(LangRust, "f.rs", src)
	b.Close(3)
	_, err = b.Tree()
	assert.ErrorContains(t, err, "close without open node")

	b = NewBuilder(LangRust, "f.rs", src)
	b.Open("source_file", "", 0)
	_, err = b.Tree()
	assert.ErrorContains(t, err, "1 unclosed nodes")

	b = NewBuilder(LangRust, "f.rs", src)
	b.Leaf("source_file", "", 0, len(src))
	assert.Equal(t, NoNode, b.Open("source_file", "", 0))
	_, err = b.Tree()
	assert.ErrorContains(t, err, "opened after the root was closed")

	b = NewBuilder(LangRust, "f.rs", src)
	b.Open("function_item", "", 5)
	b.Close(2)
	_, err = b.Tree()
	assert.ErrorContains(t, err, "function_item ends at 2 before its start 5")
}

// --- kinds ---

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindIdentifier, KindOf("identifier"))
	assert.Equal(t, KindOther, KindOf("binary_expression"))
	assert.Equal(t, "identifier", KindIdentifier.String())
	assert.Equal(t, "other", KindOther.String())

	assert.True(t, KindLineComment.IsComment())
	assert.False(t, KindIdentifier.IsComment())
	assert.True(t, KindSelf.IsPathSegment())
	assert.False(t, KindBlock.IsPathSegment())

	assert.Equal(t, "rust", LangRust.String())
	assert.Equal(t, "unknown", LangUnknown.String())
}

func TestBuilder_OtherKindKeepsType(t *testing.T) {
	tree := leafTree(t, "x")
	b := NewBuilder(LangRust, "x.rs", []byte("1 + 2"))
	b.Leaf("binary_expression", "", 0, 5)
	other, err := b.Tree()
	require.NoError(t, err)
	assert.Equal(t, KindOther, other.Root().Kind())
	assert.Equal(t, "binary_expression", other.Root().Type())
	assert.Equal(t, KindSourceFile, tree.Root().Kind())
}
