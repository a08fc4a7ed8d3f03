// Copyright © 2024 The rsresolve authors

package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/rsresolve/rstest"
	"github.com/luthersystems/rsresolve/syntax"
	"github.com/luthersystems/rsresolve/testcrumb"
)

// resolveMarked parses src and resolves the reference at the /*@ref*/
// marker.
func resolveMarked(t *testing.T, e *Engine, src string) (Decl, bool, map[string]int) {
	t.Helper()
	tree, marks := rstest.Marked(t, src)
	ref, err := e.ReferenceAt(tree, marks["ref"])
	require.NoError(t, err)
	decl, ok := ref.Resolve()
	return decl, ok, marks
}

// assertResolves checks that the reference at /*@ref*/ resolves to the
// name declared at /*@def*/.
func assertResolves(t *testing.T, e *Engine, src string, kind DeclKind) Decl {
	t.Helper()
	decl, ok, marks := resolveMarked(t, e, src)
	require.True(t, ok, "reference did not resolve")
	assert.Equal(t, kind, decl.Kind)
	assert.Equal(t, marks["def"], decl.NameNode.Start(), "resolved to %s", decl)
	return decl
}

func assertUnresolved(t *testing.T, e *Engine, src string) {
	t.Helper()
	decl, ok, _ := resolveMarked(t, e, src)
	assert.False(t, ok, "unexpectedly resolved to %s", decl)
}

// --- Lexical lookup tests ---

func TestResolve_BuiltTree(t *testing.T) {
	tree, letName, use := buildLetTree(t)
	ref, err := NewReference(tree.Node(use))
	require.NoError(t, err)

	decl, ok := ref.Resolve()
	require.True(t, ok)
	assert.Equal(t, DeclLet, decl.Kind)
	assert.Equal(t, tree.Node(letName), decl.NameNode)
}

func TestResolve_Lexical(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DeclKind
	}{
		{
			name: "let",
			src:  `fn f() { let /*@def*/x = 1; /*@ref*/x; }`,
			kind: DeclLet,
		},
		{
			name: "parameter",
			src:  `fn f(/*@def*/x: i32) -> i32 { /*@ref*/x }`,
			kind: DeclParam,
		},
		{
			name: "inner block shadows parameter",
			src:  `fn f(x: i32) { { let /*@def*/x = 2; /*@ref*/x; } }`,
			kind: DeclLet,
		},
		{
			name: "later let shadows earlier",
			src:  `fn f() { let x = 1; let /*@def*/x = 2; /*@ref*/x; }`,
			kind: DeclLet,
		},
		{
			name: "initializer sees previous binding",
			src:  `fn f() { let /*@def*/x = 1; let x = /*@ref*/x + 1; }`,
			kind: DeclLet,
		},
		{
			name: "items are hoisted",
			src:  `fn f() { /*@ref*/g(); fn /*@def*/g() {} }`,
			kind: DeclFunction,
		},
		{
			name: "file item",
			src:  `fn main() { /*@ref*/helper(); } fn /*@def*/helper() {}`,
			kind: DeclFunction,
		},
		{
			name: "binding wins over item once visible",
			src:  `fn f() { fn x() {} let /*@def*/x = 1; /*@ref*/x; }`,
			kind: DeclLet,
		},
		{
			name: "item before binding is visible",
			src:  `fn f() { /*@ref*/x(); let x = 1; fn /*@def*/x() {} }`,
			kind: DeclFunction,
		},
		{
			name: "tuple pattern",
			src:  `fn f(p: (i32, i32)) { let (a, /*@def*/b) = p; /*@ref*/b; }`,
			kind: DeclLet,
		},
		{
			name: "match arm",
			src:  `fn f(o: Option<i32>) -> i32 { match o { Some(/*@def*/v) => /*@ref*/v, None => 0 } }`,
			kind: DeclPatternBinding,
		},
		{
			name: "match guard",
			src:  `fn f(o: Option<i32>) { match o { Some(/*@def*/v) if /*@ref*/v > 0 => {}, _ => {} } }`,
			kind: DeclPatternBinding,
		},
		{
			name: "for pattern",
			src:  `fn f() { for /*@def*/i in 0..3 { /*@ref*/i; } }`,
			kind: DeclPatternBinding,
		},
		{
			name: "for iterable does not see pattern",
			src:  `fn f(/*@def*/i: i32) { for i in 0../*@ref*/i {} }`,
			kind: DeclParam,
		},
		{
			name: "if let",
			src:  `fn f(o: Option<i32>) { if let Some(/*@def*/v) = o { /*@ref*/v; } }`,
			kind: DeclPatternBinding,
		},
		{
			name: "while let",
			src:  `fn f(mut o: Option<i32>) { while let Some(/*@def*/v) = o { /*@ref*/v; } }`,
			kind: DeclPatternBinding,
		},
		{
			name: "closure parameter",
			src:  `fn f() { let c = |/*@def*/y| /*@ref*/y + 1; }`,
			kind: DeclParam,
		},
		{
			name: "closure captures local",
			src:  `fn f() { let /*@def*/z = 1; let c = |y| y + /*@ref*/z; }`,
			kind: DeclLet,
		},
		{
			name: "self parameter",
			src:  `struct S; impl S { fn f(&/*@def*/self) { /*@ref*/self; } }`,
			kind: DeclParam,
		},
		{
			name: "function type parameter",
			src:  `fn id</*@def*/T>(t: /*@ref*/T) -> T { t }`,
			kind: DeclTypeParam,
		},
		{
			name: "struct type parameter",
			src:  `struct W</*@def*/T> { v: /*@ref*/T }`,
			kind: DeclTypeParam,
		},
		{
			name: "const",
			src:  `const /*@def*/N: usize = 3; fn f() -> usize { /*@ref*/N }`,
			kind: DeclConst,
		},
		{
			name: "macro",
			src:  `macro_rules! /*@def*/m { () => {} } fn f() { /*@ref*/m!(); }`,
			kind: DeclMacro,
		},
		{
			name: "extern crate alias",
			src:  `extern crate foo as /*@def*/bar; fn f() { /*@ref*/bar::x(); }`,
			kind: DeclCrate,
		},
		{
			name: "struct in type position",
			src:  `struct /*@def*/S; fn f(s: /*@ref*/S) {}`,
			kind: DeclStruct,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertResolves(t, Default(), tt.src, tt.kind)
		})
	}
}

func TestResolve_ForwardReference(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertUnresolved(t, e, `fn f() { /*@ref*/x; let x = 1; }`)
	}, crumbNotYetVisible)
}

func TestResolve_ForwardReferenceFallsBackOutward(t *testing.T) {
	assertResolves(t, Default(), `fn f(/*@def*/x: i32) { /*@ref*/x; let x = 1; }`, DeclParam)
}

func TestResolve_OwnInitializer(t *testing.T) {
	assertUnresolved(t, Default(), `fn f() { let x = /*@ref*/x; }`)
}

func TestResolve_IfLetElse(t *testing.T) {
	assertUnresolved(t, Default(), `fn f(o: Option<i32>) { if let Some(v) = o {} else { /*@ref*/v; } }`)
}

func TestResolve_ItemBoundary(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertUnresolved(t, e, `fn outer() { let x = 1; fn inner() { /*@ref*/x; } }`)
	}, crumbItemBoundary)

	// items stay visible across the boundary
	assertResolves(t, Default(), `fn outer() { fn /*@def*/g() {} fn inner() { /*@ref*/g(); } }`, DeclFunction)
}

func TestResolve_OuterGenerics(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertUnresolved(t, e, `fn f<T>() { fn g(_: /*@ref*/T) {} }`)
	}, crumbItemBoundary)

	// methods see the generics of their impl
	assertResolves(t, Default(), `struct S<T>(T); impl</*@def*/T> S<T> { fn m(_: /*@ref*/T) {} }`, DeclTypeParam)
	assertResolves(t, Default(), `fn f</*@def*/T>(_: /*@ref*/T) {}`, DeclTypeParam)
}

func TestResolve_ConstBoundary(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"const", `fn f() { let x = 1; const C: i32 = /*@ref*/x; }`},
		{"static", `fn f() { let x = 1; static S: i32 = /*@ref*/x; }`},
		{"parameter", `fn f(x: i32) { const C: i32 = /*@ref*/x; }`},
		{"generic", `fn f<T: Default>() { const C: Option<T> = None::</*@ref*/T>; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertUnresolved(t, Default(), tt.src)
		})
	}

	assertResolves(t, Default(), `fn f() { const /*@def*/N: i32 = 1; const M: i32 = /*@ref*/N; }`, DeclConst)
	assertResolves(t, Default(), `const C: i32 = { let /*@def*/y = 1; /*@ref*/y };`, DeclLet)
}

// --- Incomplete code tests ---

func TestResolve_Unterminated(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DeclKind
	}{
		{
			name: "let in open call",
			src:  `fn f() { let /*@def*/x = 1; foo(/*@ref*/x`,
			kind: DeclLet,
		},
		{
			name: "let before field access",
			src:  `fn f() { let /*@def*/x = 1; /*@ref*/x.`,
			kind: DeclLet,
		},
		{
			name: "parameter before field access",
			src:  `fn f(/*@def*/a: i32) { /*@ref*/a.`,
			kind: DeclParam,
		},
		{
			name: "closed body still resolves",
			src:  `fn f() { let /*@def*/x = 1; foo(/*@ref*/x); }`,
			kind: DeclLet,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertResolves(t, Default(), tt.src, tt.kind)
		})
	}
}

func TestResolve_UnterminatedBuiltTree(t *testing.T) {
	tree, ids := buildOpenFnTree(t)

	ref, err := NewReference(tree.Node(ids.use))
	require.NoError(t, err)
	decl, ok := ref.Resolve()
	require.True(t, ok)
	assert.Equal(t, DeclLet, decl.Kind)
	assert.Equal(t, tree.Node(ids.let), decl.NameNode)

	decl, ok = Lookup(tree.Node(ids.use), "a")
	require.True(t, ok)
	assert.Equal(t, DeclParam, decl.Kind)
	assert.Equal(t, tree.Node(ids.param), decl.NameNode)

	// the let is not visible before its statement ends
	_, ok = Default().LookupFrom(RootScope(tree.Root()), "x", 12)
	assert.False(t, ok)
}

func TestResolve_NotFound(t *testing.T) {
	assertUnresolved(t, Default(), `fn f() { /*@ref*/nothing; }`)
}

// --- Qualified path tests ---

func TestResolve_Qualified(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DeclKind
	}{
		{
			name: "nested modules",
			src:  `mod a { pub mod b { pub fn /*@def*/c() {} } } fn main() { a::b::/*@ref*/c(); }`,
			kind: DeclFunction,
		},
		{
			name: "path prefix",
			src:  `mod a { pub mod /*@def*/b { pub fn c() {} } } fn main() { a::/*@ref*/b::c(); }`,
			kind: DeclModule,
		},
		{
			name: "enum variant",
			src:  `enum E { A, /*@def*/B } fn f() { E::/*@ref*/B; }`,
			kind: DeclVariant,
		},
		{
			name: "crate",
			src:  `fn /*@def*/top() {} mod m { fn g() { crate::/*@ref*/top(); } }`,
			kind: DeclFunction,
		},
		{
			name: "super",
			src:  `fn /*@def*/top() {} mod m { fn g() { super::/*@ref*/top(); } }`,
			kind: DeclFunction,
		},
		{
			name: "self",
			src:  `mod m { fn g() { self::/*@ref*/h(); } fn /*@def*/h() {} }`,
			kind: DeclFunction,
		},
		{
			name: "super chain",
			src:  `fn /*@def*/top() {} mod a { mod b { fn g() { super::super::/*@ref*/top(); } } }`,
			kind: DeclFunction,
		},
		{
			name: "turbofish",
			src:  `mod m { pub fn /*@def*/make<T>() {} } fn f() { m::/*@ref*/make::<u8>(); }`,
			kind: DeclFunction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertResolves(t, Default(), tt.src, tt.kind)
		})
	}
}

func TestResolve_QualifiedNotNamespace(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertUnresolved(t, e, `struct S; fn f() { S::/*@ref*/new(); }`)
	}, crumbNotNamespace)
}

func TestResolve_QualifiedMissingSegment(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertUnresolved(t, e, `mod a {} fn f() { a::/*@ref*/zz(); }`)
	}, crumbMissingSegment)
}

func TestResolve_QualifiedIgnoresLocals(t *testing.T) {
	// later segments never see bindings
	assertUnresolved(t, Default(), `mod a { fn f() { let x = 1; } } fn g() { a::/*@ref*/x; }`)
}

// --- Import tests ---

func TestResolve_Imports(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind DeclKind
	}{
		{
			name: "simple",
			src:  `mod a { pub fn /*@def*/f() {} } use a::f; fn main() { /*@ref*/f(); }`,
			kind: DeclFunction,
		},
		{
			name: "alias",
			src:  `mod a { pub fn /*@def*/f() {} } use a::f as g; fn main() { /*@ref*/g(); }`,
			kind: DeclFunction,
		},
		{
			name: "list",
			src:  `mod a { pub fn f() {} pub fn /*@def*/h() {} } use a::{f, h}; fn main() { /*@ref*/h(); }`,
			kind: DeclFunction,
		},
		{
			name: "self in list",
			src:  `mod a { pub mod b { pub fn /*@def*/f() {} } } use a::b::{self}; fn main() { b::/*@ref*/f(); }`,
			kind: DeclFunction,
		},
		{
			name: "nested list",
			src:  `mod a { pub mod b { pub struct /*@def*/S; } } use a::{b::{S}}; fn main(s: /*@ref*/S) {}`,
			kind: DeclStruct,
		},
		{
			name: "chain of imports",
			src:  `mod a { pub fn /*@def*/f() {} } mod b { pub use super::a::f; } use b::f; fn main() { /*@ref*/f(); }`,
			kind: DeclFunction,
		},
		{
			name: "import in block",
			src:  `mod a { pub fn /*@def*/f() {} } fn main() { use a::f; /*@ref*/f(); }`,
			kind: DeclFunction,
		},
		{
			name: "use path itself",
			src:  `mod a { pub fn /*@def*/f() {} } use a::/*@ref*/f;`,
			kind: DeclFunction,
		},
		{
			name: "explicit wins over glob",
			src:  `mod a { pub fn f() {} } use a::*; fn /*@def*/f() {} fn main() { /*@ref*/f(); }`,
			kind: DeclFunction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertResolves(t, Default(), tt.src, tt.kind)
		})
	}
}

func TestResolve_Glob(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertResolves(t, e, `mod a { pub fn /*@def*/f() {} } use a::*; fn main() { /*@ref*/f(); }`, DeclFunction)
	}, crumbGlobMatch)
}

func TestResolve_GlobReexport(t *testing.T) {
	src := `mod inner { pub fn /*@def*/f() {} } mod outer { pub use super::inner::*; } fn main() { outer::/*@ref*/f(); }`
	assertResolves(t, Default(), src, DeclFunction)
}

func TestResolve_UnresolvedImport(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		decl := assertResolves(t, e, `use nowhere::/*@def*/thing; fn main() { /*@ref*/thing(); }`, DeclImport)
		assert.Equal(t, "thing", decl.Name)
	}, crumbImportUnresolved)
}

func TestResolve_ImportCycle(t *testing.T) {
	src := `
mod a { pub use super::b::x; }
mod b { pub use super::a::x; }
fn main() { a::/*@ref*/x; }
`
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		decl, ok, _ := resolveMarked(t, e, src)
		require.True(t, ok)
		assert.Equal(t, DeclImport, decl.Kind)
	}, crumbImportUnresolved)
}

func TestResolve_ImportFollowed(t *testing.T) {
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec))
		assertResolves(t, e, `mod a { pub fn /*@def*/f() {} } use a::f; fn main() { /*@ref*/f(); }`, DeclFunction)
	}, crumbImportFollowed)
}

func TestResolve_MaxImportDepth(t *testing.T) {
	src := `
mod a { pub fn f() {} }
mod b { pub use super::a::/*@def*/f; }
use b::f;
fn main() { /*@ref*/f(); }
`
	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
		e := NewEngine(WithRecorder(rec), WithMaxImportDepth(1))
		assertResolves(t, e, src, DeclImport)
	}, crumbImportDepth)

	// the default depth reaches the function
	decl, ok, _ := resolveMarked(t, Default(), src)
	require.True(t, ok)
	assert.Equal(t, DeclFunction, decl.Kind)
}

// --- Engine entry points ---

func TestLookup(t *testing.T) {
	tree, marks := rstest.Marked(t, `fn f(x: i32) { /*@at*/; }`)
	at := rstest.NodeAt(t, tree, marks, "at")

	decl, ok := Lookup(at, "x")
	require.True(t, ok)
	assert.Equal(t, DeclParam, decl.Kind)

	_, ok = Lookup(at, "y")
	assert.False(t, ok)
}

func TestLookupFrom(t *testing.T) {
	src := `fn f() { let /*@outer*/x = 1; { let /*@inner*/x = 2; } }`
	tree, marks := rstest.Marked(t, src)
	inner := rstest.NodeAt(t, tree, marks, "inner")
	block := ScopeFor(inner)
	require.Equal(t, ScopeBlock, block.Kind())

	decl, ok := Default().LookupFrom(block, "x", block.Range().End-1)
	require.True(t, ok)
	assert.Equal(t, inner, decl.NameNode)

	outer, ok := ParentScope(block)
	require.True(t, ok)
	decl, ok = Default().LookupFrom(outer, "x", inner.Start())
	require.True(t, ok)
	assert.Equal(t, marks["outer"], decl.NameNode.Start())

	_, ok = Default().LookupFrom(Scope{}, "x", 0)
	assert.False(t, ok)
}

func TestLookupPath(t *testing.T) {
	src := `
mod a {
    pub mod b { pub fn /*@c*/c() {} }
    fn g() { /*@in_a*/; }
}
fn /*@main*/main() { let /*@x*/x = 1; /*@at*/; }
`
	tree, marks := rstest.Marked(t, src)
	root := tree.Root()
	end := len(tree.Source())
	e := Default()

	for _, path := range [][]string{{"a", "b", "c"}, {"", "a", "b", "c"}, {"crate", "a", "b", "c"}} {
		decl, ok := e.LookupPath(root, path, end)
		require.True(t, ok, "%v", path)
		assert.Equal(t, DeclFunction, decl.Kind)
		assert.Equal(t, marks["c"], decl.NameNode.Start())
	}
	_, ok := e.LookupPath(root, []string{"a", "x", "c"}, end)
	assert.False(t, ok)

	inA := rstest.NodeAt(t, tree, marks, "in_a")
	decl, ok := e.LookupPath(inA, []string{"self", "b", "c"}, marks["in_a"])
	require.True(t, ok)
	assert.Equal(t, marks["c"], decl.NameNode.Start())
	decl, ok = e.LookupPath(inA, []string{"super", "main"}, marks["in_a"])
	require.True(t, ok)
	assert.Equal(t, marks["main"], decl.NameNode.Start())
	_, ok = e.LookupPath(inA, []string{"b", "c"}, marks["in_a"])
	assert.True(t, ok)

	at := rstest.NodeAt(t, tree, marks, "at")
	decl, ok = e.LookupPath(at, []string{"x"}, marks["at"])
	require.True(t, ok)
	assert.Equal(t, DeclLet, decl.Kind)

	_, ok = e.LookupPath(syntax.Node{}, []string{"a"}, 0)
	assert.False(t, ok)
}

func TestDeclarationAt(t *testing.T) {
	src := `
fn /*@fn*/f(/*@param*/p: i32) { let /*@let*/x = p; }
enum E { /*@variant*/V }
mod /*@mod*/m {}
use m::/*@import*/q;
`
	tree, marks := rstest.Marked(t, src)
	tests := []struct {
		mark string
		kind DeclKind
	}{
		{"fn", DeclFunction},
		{"param", DeclParam},
		{"let", DeclLet},
		{"variant", DeclVariant},
		{"mod", DeclModule},
		{"import", DeclImport},
	}
	for _, tt := range tests {
		t.Run(tt.mark, func(t *testing.T) {
			n := rstest.NodeAt(t, tree, marks, tt.mark)
			decl, ok := DeclarationAt(n)
			require.True(t, ok)
			assert.Equal(t, tt.kind, decl.Kind)
			assert.Equal(t, n, decl.NameNode)
		})
	}
}

func TestResolve_Concurrent(t *testing.T) {
	src := `mod a { pub fn /*@def*/f() {} } use a::*; fn main() { let x = 1; /*@ref*/f(); }`
	tree, marks := rstest.Marked(t, src)
	ref, err := ReferenceAt(tree, marks["ref"])
	require.NoError(t, err)

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(4)
	results := make([]Decl, 32)
	for i := range results {
		g.Go(func() error {
			d, _ := ref.Resolve()
			results[i] = d
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, d := range results {
		assert.Equal(t, marks["def"], d.NameNode.Start())
	}
}
