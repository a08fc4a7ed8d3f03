// Copyright © 2024 The rsresolve authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/rsresolve/parser"
	"github.com/luthersystems/rsresolve/rstest"
)

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, source string) []Diagnostic {
	t.Helper()
	return lintCheck(t, nil, source)
}

// lintCheck runs a single analyzer on the given source. A nil analyzer
// runs the default set.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers()}
	if analyzer != nil {
		l.Analyzers = []*Analyzer{analyzer}
	}
	tree := rstest.Parse(t, source)
	diags, err := l.LintTree(tree, nil)
	require.NoError(t, err)
	return diags
}

func messages(diags []Diagnostic) []string {
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s (%s)", d.Pos.Line, d.Message, d.Analyzer))
	}
	return msgs
}

// assertHasDiag checks that at least one diagnostic contains the given substring.
func assertHasDiag(t *testing.T, diags []Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("expected diagnostic containing %q, got: %v", substr, messages(diags))
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), messages(diags))
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, messages(diags))
}

// --- unresolved-name ---

func TestUnresolvedName(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnresolvedName, `fn main() {
    let v = 1;
    frobnicate(v);
}`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "unresolved name `frobnicate`")
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "unresolved-name", diags[0].Analyzer)
	assert.Equal(t, Position{File: "main.rs", Line: 3, Col: 5}, diags[0].Pos)
}

func TestUnresolvedName_ExternalAndPrelude(t *testing.T) {
	diags := lintSource(t, `use std::collections::HashMap;
fn main() {
    let v: Vec<i32> = Vec::new();
    let m: HashMap<i32, i32> = HashMap::new();
    let o = Some(v.len() + m.len());
    std::mem::drop(o);
}`)
	assertNoDiags(t, diags)
}

func TestUnresolvedName_QualifiedOnce(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnresolvedName, `mod a {}
fn main() { a::missing::deeper(); }`)
	require.Len(t, diags, 1)
	assertHasDiag(t, diags, "a::missing")
}

// --- unresolved-import ---

func TestUnresolvedImport(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnresolvedImport, `mod a { pub fn f() {} }
use a::f;
use a::g;
fn main() { f(); }`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "unresolved import `a::g`")
}

func TestUnresolvedImport_NotUnresolvedName(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnresolvedName, `mod a {}
use a::g;`)
	assertNoDiags(t, diags)
}

// --- use-before-let ---

func TestUseBeforeLet(t *testing.T) {
	src := `fn main() {
    let y = x + 1;
    let x = 2;
    y;
    x;
}`
	diags := lintCheck(t, AnalyzerUseBeforeLet, src)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "`x` is used before its let binding")
	assert.Equal(t, []string{"`x` is bound on line 3"}, diags[0].Notes)

	// the same name is not also reported as unresolved
	assertNoDiags(t, lintCheck(t, AnalyzerUnresolvedName, src))
}

func TestUseBeforeLet_OwnInitializer(t *testing.T) {
	diags := lintCheck(t, AnalyzerUseBeforeLet, `fn main() {
    let n = n;
}`)
	assertDiagOnLine(t, diags, 2, "`n` is used before its let binding")
}

func TestUseBeforeLet_OuterBlock(t *testing.T) {
	diags := lintCheck(t, AnalyzerUseBeforeLet, `fn main() {
    {
        z;
    }
    let z = 1;
}`)
	assertDiagOnLine(t, diags, 3, "`z`")
}

func TestUseBeforeLet_NotAcrossFunctions(t *testing.T) {
	diags := lintCheck(t, AnalyzerUseBeforeLet, `fn main() {
    fn inner() { w; }
    let w = 1;
}`)
	assertNoDiags(t, diags)
}

// --- unused-binding ---

func TestUnusedBinding(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnusedBinding, `fn f(a: i32, _b: i32) {
    let c = 1;
    let d = 2;
    d;
}`)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 1, "unused parameter `a`")
	assertDiagOnLine(t, diags, 2, "unused let binding `c`")
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, []string{"if this is intentional, prefix it with an underscore: `_c`"}, diags[1].Notes)
}

func TestUnusedBinding_Exemptions(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"self", `struct S; impl S { fn m(&self) {} }`},
		{"signature", `trait T { fn m(&self, x: i32); }`},
		{"format capture", `fn f() { let name = 1; println!("{name}"); }`},
		{"format spec", `fn f() { let width = 1.5; println!("{width:.2}"); }`},
		{"macro argument", `fn f() { let v = 1; println!("{}", v); }`},
		{"variant pattern", `fn f(o: Option<i32>) -> i32 { match o { Some(v) => v, None => 0 } }`},
		{"closure", `fn f() -> i32 { let g = |a: i32| a + 1; g(1) }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerUnusedBinding, tt.src))
		})
	}
}

func TestUnusedBinding_Pattern(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnusedBinding, `fn f(p: (i32, i32)) -> i32 {
    let (a, b) = p;
    a
}`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "`b`")
}

// --- shadowed-binding ---

func TestShadowedBinding(t *testing.T) {
	diags := lintCheck(t, AnalyzerShadowedBinding, `fn f() {
    let x = 1;
    {
        let x = 2;
        x;
    }
    x;
}`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 4, "`x` shadows the let binding on line 2")
	assert.Equal(t, SeverityInfo, diags[0].Severity)
}

func TestShadowedBinding_Parameter(t *testing.T) {
	diags := lintCheck(t, AnalyzerShadowedBinding, `fn f(s: &str) -> &str {
    let s = s.trim();
    s
}`)
	assertDiagOnLine(t, diags, 2, "shadows the parameter on line 1")
}

func TestShadowedBinding_SameBlock(t *testing.T) {
	diags := lintCheck(t, AnalyzerShadowedBinding, `fn f() {
    let x = 1;
    let x = x + 1;
    x;
}`)
	assertNoDiags(t, diags)
}

func TestShadowedBinding_NestedFunction(t *testing.T) {
	diags := lintCheck(t, AnalyzerShadowedBinding, `fn f() {
    let x = 1;
    fn g() { let x = 2; x; }
    x;
}`)
	assertNoDiags(t, diags)
}

// --- Framework tests ---

func TestNolint(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnresolvedName, `fn main() {
    foo(); // nolint
    bar(); // nolint:unused-binding
    baz(); // nolint:unresolved-name
    qux(); /* nolint:unresolved-name,unused-binding */
}`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "`bar`")
}

func TestLinter_Sorted(t *testing.T) {
	diags := lintSource(t, `fn main() {
    b();
    let unused = 1;
    a();
}`)
	require.Len(t, diags, 3)
	for i := 1; i < len(diags); i++ {
		assert.LessOrEqual(t, diags[i-1].Pos.Line, diags[i].Pos.Line)
	}
}

func TestLintFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.rs")
	b := filepath.Join(dir, "b.rs")
	require.NoError(t, os.WriteFile(a, []byte("fn main() { missing(); }\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("fn f() {}\n"), 0o644))

	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.LintFiles(context.Background(), []string{b, a}, 2)
	if errors.Is(err, parser.ErrNoCgo) {
		t.Skip("rust parser needs cgo")
	}
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, a, diags[0].Pos.File)

	_, err = l.LintFiles(context.Background(), []string{filepath.Join(dir, "nope.rs")}, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelect(t *testing.T) {
	all := DefaultAnalyzers()

	got, err := Select(all, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = Select(all, []string{"unused-binding", "shadowed-binding"}, []string{"shadowed-binding"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "unused-binding", got[0].Name)

	got, err = Select(all, nil, []string{"unresolved-name"})
	require.NoError(t, err)
	assert.Len(t, got, len(all)-1)

	_, err = Select(all, []string{"set-usage"}, nil)
	assert.ErrorIs(t, err, ErrUnknownAnalyzer)
}

// --- Output tests ---

func TestSeverity_JSON(t *testing.T) {
	b, err := json.Marshal(SeverityError)
	require.NoError(t, err)
	assert.Equal(t, `"error"`, string(b))

	b, err = json.Marshal(severityUnset)
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(b))

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"info"`), &s))
	assert.Equal(t, SeverityInfo, s)
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Pos:      Position{File: "main.rs", Line: 3, Col: 9},
		Message:  "unused let binding `c`",
		Analyzer: "unused-binding",
		Notes:    []string{"prefix it"},
	}
	assert.Equal(t, "main.rs:3:9: unused let binding `c` (unused-binding)\n  = note: prefix it", d.String())
	assert.Equal(t, "main.rs:3", Position{File: "main.rs", Line: 3}.String())
	assert.Equal(t, "main.rs", Position{File: "main.rs"}.String())
}

func TestFormat(t *testing.T) {
	diags := []Diagnostic{{
		Pos:      Position{File: "main.rs", Line: 1, Col: 2},
		Message:  "unresolved name `x`",
		Analyzer: "unresolved-name",
		Severity: SeverityError,
	}}

	var text bytes.Buffer
	FormatText(&text, diags)
	assert.Equal(t, "main.rs:1:2: unresolved name `x` (unresolved-name)\n", text.String())

	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()
	var colored bytes.Buffer
	FormatColor(&colored, diags)
	assert.Equal(t, "main.rs:1:2: error: unresolved name `x` (unresolved-name)\n", colored.String())

	var js bytes.Buffer
	require.NoError(t, FormatJSON(&js, diags))
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "error", decoded[0]["severity"])
	assert.NotContains(t, decoded[0], "Range")

	js.Reset()
	require.NoError(t, FormatJSON(&js, nil))
	assert.Equal(t, "[]\n", js.String())
}

func TestAnalyzerDoc(t *testing.T) {
	names := AnalyzerNames()
	assert.Equal(t, []string{"shadowed-binding", "unresolved-import", "unresolved-name", "unused-binding", "use-before-let"}, names)
	doc := AnalyzerDoc()
	for _, name := range names {
		assert.Contains(t, doc, "  "+name+" (")
	}
	for _, line := range strings.Split(doc, "\n") {
		assert.LessOrEqual(t, len(line), 76, line)
	}
}
