// Copyright © 2024 The rsresolve authors

package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/rsresolve/repl"
)

func newSession(t *testing.T) (*session, string) {
	t.Helper()
	path := writeFixture(t, fixture)
	src, err := loadSource(context.Background(), path, (&cmdConfig{}).analysisConfig())
	require.NoError(t, err)
	return &session{ctx: context.Background(), src: src}, path
}

func evalLine(t *testing.T, s *session, line string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := s.Eval(&buf, line)
	return buf.String(), err
}

func TestSession_Queries(t *testing.T) {
	s, path := newSession(t)

	out, err := evalLine(t, s, "geo::Point")
	require.NoError(t, err)
	assert.Contains(t, out, path+":7:16: struct `Point`")

	out, err = evalLine(t, s, "11:17")
	require.NoError(t, err)
	assert.Equal(t, path+":2:4: function `add`\n", out)

	out, err = evalLine(t, s, ":refs 2:4")
	require.NoError(t, err)
	assert.Equal(t, path+":2:4: fn add(a: i32, b: i32) -> i32 {\n"+
		path+":11:17: let total = add(1, 2);\n", out)

	out, err = evalLine(t, s, ":scopes 3:5")
	require.NoError(t, err)
	assert.Contains(t, out, "parameter a, parameter b")

	out, err = evalLine(t, s, ":doc add")
	require.NoError(t, err)
	assert.Contains(t, out, "Adds two numbers.")

	out, err = evalLine(t, s, ":items")
	require.NoError(t, err)
	assert.Contains(t, out, "geo::Point")
}

func TestSession_Errors(t *testing.T) {
	s, _ := newSession(t)

	_, err := evalLine(t, s, "geo::Nope")
	assert.ErrorContains(t, err, "`geo::Nope` resolves to nothing")

	_, err = evalLine(t, s, "13:5")
	assert.ErrorContains(t, err, "`missing` resolves to nothing")

	_, err = evalLine(t, s, ":refs")
	assert.Error(t, err)

	_, err = evalLine(t, s, ":bogus")
	assert.ErrorContains(t, err, "unknown command :bogus")

	_, err = evalLine(t, s, "a b")
	assert.Error(t, err)
}

func TestSession_HelpQuit(t *testing.T) {
	s, _ := newSession(t)

	out, err := evalLine(t, s, ":help")
	require.NoError(t, err)
	assert.Equal(t, replHelp, out)

	_, err = evalLine(t, s, ":quit")
	assert.ErrorIs(t, err, repl.ErrQuit)
}

func TestSession_Reload(t *testing.T) {
	s, path := newSession(t)
	require.NoError(t, os.WriteFile(path, []byte("fn renamed() {}\n"), 0o600))

	out, err := evalLine(t, s, ":reload")
	require.NoError(t, err)
	assert.Equal(t, "reloaded "+path+"\n", out)

	out, err = evalLine(t, s, "renamed")
	require.NoError(t, err)
	assert.Contains(t, out, path+":1:4: function `renamed`")
}

func TestSession_Names(t *testing.T) {
	s, _ := newSession(t)
	names := s.Names()
	for _, want := range []string{"add", "geo", "geo::Point", "main", "total"} {
		assert.Contains(t, names, want)
	}
}
