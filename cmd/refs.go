// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/syntax"
)

type refsOptions struct {
	json   bool
	noDecl bool
}

func newRefsCommand(cfg *cmdConfig) *cobra.Command {
	var opts refsOptions
	cmd := &cobra.Command{
		Use:   "refs FILE:LINE:COL",
		Short: "List the uses of a declaration",
		Long: `List every use, in the same file, of the declaration at FILE:LINE:COL.

The position may be on the declaration's name or on any reference to it.
The declaration itself is listed first unless --no-decl is given.

Examples:
  rsresolve refs src/main.rs:3:8
  rsresolve refs --json --no-decl src/main.rs:3:8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, offset, err := loadLocation(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			return runRefs(cmd.OutOrStdout(), src, offset, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the positions as JSON.")
	cmd.Flags().BoolVar(&opts.noDecl, "no-decl", false, "Omit the declaration itself.")
	return cmd
}

// occurrence is the printed form of a use.
type occurrence struct {
	Pos  lint.Position `json:"pos"`
	Text string        `json:"text"`
}

func runRefs(w io.Writer, src *source, offset int, opts refsOptions) error {
	d, ok := src.res.DeclAt(offset)
	if !ok {
		return notFound("%s: no resolvable name at this position", src.pos(offset))
	}
	var ranges []syntax.TextRange
	if opts.noDecl {
		for _, ref := range src.res.RefsTo(d) {
			ranges = append(ranges, ref.Range())
		}
	} else {
		ranges = src.res.Occurrences(d)
	}

	occs := make([]occurrence, 0, len(ranges))
	for _, r := range ranges {
		pos := src.pos(r.Start)
		occs = append(occs, occurrence{
			Pos:  pos,
			Text: strings.TrimSpace(src.tree.Line(pos.Line - 1)),
		})
	}
	if opts.json {
		return writeJSON(w, occs)
	}
	for _, o := range occs {
		fmt.Fprintf(w, "%s: %s\n", posColor.Sprint(o.Pos), o.Text) //nolint:errcheck
	}
	return nil
}
