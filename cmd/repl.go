// Copyright © 2024 The rsresolve authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/query"
	"github.com/luthersystems/rsresolve/repl"
)

const replHelp = `Commands:
  PATH                 resolve a path at file scope, e.g. geo::Point
  PATH@LINE:COL        resolve a path from a position
  LINE:COL             the declaration the name at a position refers to
  :refs LINE:COL       uses of the declaration at a position
  :scopes LINE:COL     scopes enclosing a position
  :doc QUERY           signature and doc comment
  :items               items declared in the file
  :reload              parse the file again
  :help                this message
  :quit                leave the session
`

func newReplCommand(cfg *cmdConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "repl FILE",
		Short: "Explore name resolution in a file interactively",
		Long: `Start an interactive session over FILE. Each line is a query resolved
against the file; :help lists the commands. Line editing, completion of
item names and command history are supported via readline. Use Ctrl-D to
exit.

Example session:
  main.rs> geo::Point
  main.rs:3:16: struct ` + "`Point`" + `
  main.rs> 12:9
  main.rs:10:9: let binding ` + "`total`" + `
  main.rs> :refs 10:9
  main.rs:10:9: let total = 0;
  main.rs:12:9: total += x;`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			src, err := loadSource(ctx, args[0], cfg.analysisConfig(args[0]))
			if err != nil {
				return badInvocation(err)
			}
			s := &session{ctx: ctx, src: src}
			return repl.Run(s, filepath.Base(args[0])+"> ", repl.WithColor(colorMode()))
		},
	}
}

// session evaluates repl lines against one file.
type session struct {
	ctx context.Context
	src *source
}

var _ repl.Evaluator = (*session)(nil)

// Names returns the item names offered for completion.
func (s *session) Names() []string {
	names := itemNames(s.src)
	for _, sym := range s.src.res.Symbols {
		names = append(names, sym.Name)
	}
	return names
}

// Eval runs one line.
func (s *session) Eval(w io.Writer, line string) error {
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case ":quit", ":q":
		return repl.ErrQuit
	case ":help", ":h":
		_, err := io.WriteString(w, replHelp)
		return err
	case ":reload":
		if err := s.src.reload(s.ctx); err != nil {
			return err
		}
		fmt.Fprintf(w, "reloaded %s\n", s.src.path) //nolint:errcheck
		return nil
	case ":items":
		writeItemList(w, s.src)
		return nil
	case ":refs", ":scopes":
		q, err := query.Parse(arg)
		if err != nil {
			return err
		}
		offset, err := s.src.offset(q)
		if err != nil {
			return err
		}
		if command == ":scopes" {
			writeScopes(w, s.src, offset)
			return nil
		}
		return runRefs(w, s.src, offset, refsOptions{})
	case ":doc":
		q, err := query.Parse(arg)
		if err != nil {
			return err
		}
		return runDoc(w, s.src, q, docOptions{})
	}
	if strings.HasPrefix(command, ":") {
		return fmt.Errorf("unknown command %s", command)
	}

	q, err := query.Parse(line)
	if err != nil {
		return err
	}
	if q.HasPath() {
		return runPath(w, s.src, q, false)
	}
	offset, err := s.src.offset(q)
	if err != nil {
		return err
	}
	return runDef(w, s.src, offset, defOptions{})
}
