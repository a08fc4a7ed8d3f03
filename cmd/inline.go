// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/refactor"
)

func newInlineCommand(cfg *cmdConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "inline FILE:LINE:COL",
		Short: "Inline the declaration at a position",
		Long: `Report the edits that inline the declaration named or referenced at
FILE:LINE:COL. The inlining transformation itself is not available yet;
the command names the target and exits with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, offset, err := loadLocation(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			return runInline(cmd.OutOrStdout(), src, offset)
		},
	}
}

func runInline(w io.Writer, src *source, offset int) error {
	h := &refactor.InlineHandler{Engine: src.engine}
	n := src.tree.NodeAt(offset)
	if !h.CanInline(n) {
		return notFound("%s: nothing to inline", src.pos(offset))
	}
	edits, err := h.Inline(n)
	if err != nil {
		return notFound("%s: %w", src.pos(offset), err)
	}
	for _, e := range edits {
		fmt.Fprintf(w, "%s: replace with %q\n", posColor.Sprint(src.pos(e.Range.Start)), e.NewText) //nolint:errcheck
	}
	return nil
}
