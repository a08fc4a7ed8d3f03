// Copyright © 2024 The rsresolve authors

package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/rsresolve/diagnostic"
)

// echoEvaluator echoes lines, fails on "fail" and quits on ":quit".
type echoEvaluator struct {
	lines []string
}

func (e *echoEvaluator) Eval(w io.Writer, line string) error {
	e.lines = append(e.lines, line)
	switch line {
	case ":quit":
		return ErrQuit
	case "fail":
		return errors.New("no such name `fail`")
	}
	_, err := fmt.Fprintf(w, "echo: %s\n", line)
	return err
}

func (e *echoEvaluator) Names() []string { return nil }

func runWithString(t *testing.T, ev Evaluator, input string) string {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	done := make(chan error, 1)
	go func() {
		err := Run(ev, "> ",
			WithStdin(inR),
			WithStderr(outW),
			WithHistoryFile(""),
			WithColor(diagnostic.ColorNever))
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
		done <- err
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup
	require.NoError(t, <-done)
	return output.String()
}

func TestRun(t *testing.T) {
	ev := &echoEvaluator{}
	got := runWithString(t, ev, "a::b\n\n  12:4  \nfail\n")
	assert.Contains(t, got, "echo: a::b\n")
	assert.Contains(t, got, "echo: 12:4\n")
	assert.Contains(t, got, "error: no such name `fail`")
	assert.Contains(t, got, "= note: type :help for the list of commands")
	assert.Equal(t, []string{"a::b", "12:4", "fail"}, ev.lines, "blank lines are skipped")
}

func TestRun_Quit(t *testing.T) {
	ev := &echoEvaluator{}
	got := runWithString(t, ev, "one\n:quit\ntwo\n")
	assert.Contains(t, got, "echo: one")
	assert.NotContains(t, got, "echo: two")
	assert.Equal(t, []string{"one", ":quit"}, ev.lines)
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	histFile := filepath.Join(t.TempDir(), ".rsresolve_history")

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	histFile := filepath.Join(t.TempDir(), ".rsresolve_history")
	require.NoError(t, os.WriteFile(histFile, []byte("a::b"), 0o644))

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "a::b", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	ensureHistoryFilePermissions("")
}
