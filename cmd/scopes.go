// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/resolve"
)

func newScopesCommand(cfg *cmdConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "scopes FILE:LINE:COL",
		Short: "Show the scopes enclosing a position",
		Long: `Show the scopes enclosing FILE:LINE:COL, innermost first, with the
names each one declares. Names marked with * are declared by the scope
but not yet visible at the position.

Example:
  rsresolve scopes src/main.rs:12:9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, offset, err := loadLocation(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			writeScopes(cmd.OutOrStdout(), src, offset)
			return nil
		},
	}
}

func writeScopes(w io.Writer, src *source, offset int) {
	at := src.tree.NodeAt(offset)
	if at.IsNil() {
		at = src.tree.Root()
	}
	for s := range resolve.ScopeChain(at) {
		start, end := src.pos(s.Range().Start), src.pos(s.Range().End)
		fmt.Fprintf(w, "%s %s\n", kindColor.Sprint(s.Kind()), //nolint:errcheck
			faintColor.Sprintf("(lines %d-%d)", start.Line, end.Line))

		var names []string
		for d := range resolve.Declarations(s) {
			name := d.Kind.String() + " " + d.Name
			if d.Kind.IsBinding() && !d.VisibleAt(offset) {
				name += "*"
			}
			names = append(names, name)
		}
		text := "(no declarations)"
		if len(names) > 0 {
			text = strings.Join(names, ", ")
		}
		fmt.Fprintln(w, indent.String(wordwrap.String(text, 72), 4)) //nolint:errcheck
	}
}
