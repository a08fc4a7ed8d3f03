// Copyright © 2024 The rsresolve authors

// Package repl runs an interactive line-oriented shell with history and
// completion. What a line means is up to the Evaluator.
package repl

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/luthersystems/rsresolve/diagnostic"
)

// ErrQuit ends a session when returned by an Evaluator.
var ErrQuit = errors.New("quit")

// Evaluator runs one line of input.
type Evaluator interface {
	// Eval runs line and writes its output to w.
	Eval(w io.Writer, line string) error

	// Names returns the words offered for completion.
	Names() []string
}

type config struct {
	stdin       io.ReadCloser
	stderr      io.Writer
	historyFile string
	color       diagnostic.ColorMode
}

func newConfig(opts ...Option) *config {
	config := &config{historyFile: historyPath()}
	for _, opt := range opts {
		opt(config)
	}
	if config.stderr == nil {
		config.stderr = os.Stderr
	}
	return config
}

// Option configures a session.
type Option func(*config)

// WithStdin overrides the input of the session.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr overrides the output of the session.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile sets the file input history is kept in. An empty path
// keeps no history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithColor sets how errors are colored.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// Run reads lines until end of input or until ev returns ErrQuit. Errors
// returned by ev are rendered and the session continues.
func Run(ev Evaluator, prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	ensureHistoryFilePermissions(cfg.historyFile)

	rlCfg := &readline.Config{
		Stdout:            cfg.stderr,
		Stderr:            cfg.stderr,
		Prompt:            prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &nameCompleter{names: ev.Names},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	r := &diagnostic.Renderer{Color: cfg.color}
	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		err = ev.Eval(cfg.stderr, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			_ = r.Render(cfg.stderr, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Message:  err.Error(),
				Notes:    []string{"type :help for the list of commands"},
			})
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rsresolve_history")
}

// ensureHistoryFilePermissions creates the history file readable only by
// its owner, or restricts an existing one.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) //nolint:gosec // path is the user's own history file
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0o600)
}
