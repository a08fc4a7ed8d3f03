// Copyright © 2024 The rsresolve authors

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/rsresolve/diagnostic"
	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/syntax"
)

func TestLintCommand_DefaultFlags(t *testing.T) {
	cmd := LintCommand()
	assert.Equal(t, "lint [flags] [files...]", cmd.Use)

	for _, name := range []string{"json", "short", "checks", "disable", "list", "exclude", "jobs"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestLintCommand_List(t *testing.T) {
	out, err := run(t, LintCommand(), "--list")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(lint.AnalyzerNames(), "\n")+"\n", out)
}

func TestLintCommand_JSON(t *testing.T) {
	path := writeFixture(t, fixture)
	out, err := run(t, LintCommand(), "--json", "--checks=unresolved-name", path)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))

	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "unresolved-name", diags[0].Analyzer)
	assert.Equal(t, "unresolved name `missing`", diags[0].Message)
	assert.Equal(t, lint.Position{File: path, Line: 13, Col: 5}, diags[0].Pos)
}

func TestLintCommand_Rendered(t *testing.T) {
	path := writeFixture(t, fixture)
	cmd := LintCommand()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--checks=unresolved-name", path})
	cmd.SilenceErrors = true
	err := cmd.Execute()
	assert.Equal(t, 1, exitCode(t, err))

	out := stderr.String()
	assert.Contains(t, out, "error: unresolved name `missing` (unresolved-name)")
	assert.Contains(t, out, "--> "+path+":13:5")
	assert.Contains(t, out, "13 |      missing(total);")
	assert.Contains(t, out, "^^^^^^^")
	assert.Contains(t, out, "= note: to suppress: add \"// nolint:unresolved-name\" at the end of this line")
}

func TestLintCommand_Clean(t *testing.T) {
	path := writeFixture(t, "fn main() {\n    let x = 1;\n    let _y = x;\n}\n")
	out, err := run(t, LintCommand(), path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLintCommand_Disable(t *testing.T) {
	path := writeFixture(t, fixture)
	_, err := run(t, LintCommand(), "--disable=unresolved-name,unused-binding", path)
	require.NoError(t, err)
}

func TestLintCommand_CargoDependencies(t *testing.T) {
	path := writeFixture(t, "use serde::Serialize;\n\nfn main() {\n    let _x = rand::random();\n}\n")
	args := []string{"--checks=unresolved-name,unresolved-import", path}

	_, err := run(t, LintCommand(), args...)
	assert.Equal(t, 1, exitCode(t, err))

	manifest := "[package]\nname = \"demo\"\n\n[dependencies]\nserde = \"1\"\nrand = \"0.8\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "Cargo.toml"), []byte(manifest), 0o600))
	_, err = run(t, LintCommand(), args...)
	require.NoError(t, err)
}

func TestLintCommand_Stdin(t *testing.T) {
	writeFixture(t, "")
	cmd := LintCommand()
	cmd.SetIn(strings.NewReader("fn main() { nope(); }\n"))
	out, err := run(t, cmd, "--json")
	assert.Equal(t, 1, exitCode(t, err))

	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "<stdin>", diags[0].Pos.File)
}

func TestLintCommand_UnknownCheck(t *testing.T) {
	_, err := run(t, LintCommand(), "--checks=no-such-check", "main.rs")
	assert.Equal(t, 2, exitCode(t, err))
	assert.ErrorIs(t, err, lint.ErrUnknownAnalyzer)
}

func TestLintCommand_Unreadable(t *testing.T) {
	writeFixture(t, "")
	_, err := run(t, LintCommand(), "no/such/file.rs")
	assert.Equal(t, 2, exitCode(t, err))
}

func TestLintDiagToDiagnostic(t *testing.T) {
	d := lintDiagToDiagnostic(lint.Diagnostic{
		Pos:      lint.Position{File: "main.rs", Line: 3, Col: 9},
		Range:    syntax.TextRange{Start: 40, End: 45},
		Message:  "unused let binding `total`",
		Analyzer: "unused-binding",
		Severity: lint.SeverityWarning,
		Notes:    []string{"if this is intentional, prefix it with an underscore: `_total`"},
	})
	assert.Equal(t, diagnostic.SeverityWarning, d.Severity)
	assert.Equal(t, "unused let binding `total` (unused-binding)", d.Message)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, diagnostic.Span{File: "main.rs", Line: 3, Col: 9, EndCol: 13}, d.Spans[0])
	assert.Equal(t, []string{
		"if this is intentional, prefix it with an underscore: `_total`",
		"to suppress: add \"// nolint:unused-binding\" at the end of this line",
	}, d.Notes)
}

func TestLintDiagToDiagnostic_NoPosition(t *testing.T) {
	d := lintDiagToDiagnostic(lint.Diagnostic{Message: "m", Analyzer: "a", Severity: lint.SeverityInfo})
	assert.Equal(t, diagnostic.SeverityNote, d.Severity)
	assert.Empty(t, d.Spans)
}
