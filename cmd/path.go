// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/query"
)

func newPathCommand(cfg *cmdConfig) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "path FILE QUERY",
		Short: "Resolve a path such as a::b::c",
		Long: `Resolve a path written in FILE's namespace.

QUERY is a path, optionally followed by the position to resolve it from:

  geo::Point            resolved at file scope
  ::geo::Point          resolved from the crate root
  self::helper@12:5     resolved in the scopes enclosing line 12, column 5
  x@20:9                the binding x visible at line 20, column 9

Examples:
  rsresolve path src/lib.rs geo::Point
  rsresolve path --json src/main.rs 'total@14:5'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := query.Parse(args[1])
			if err != nil {
				return badInvocation(err)
			}
			src, err := loadSource(commandContext(cmd), args[0], cfg.analysisConfig(args[0]))
			if err != nil {
				return badInvocation(err)
			}
			return runPath(cmd.OutOrStdout(), src, q, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the declaration as JSON.")
	return cmd
}

func runPath(w io.Writer, src *source, q query.Query, asJSON bool) error {
	d, ok, err := q.Eval(src.engine, src.tree)
	if err != nil {
		return badInvocation(err)
	}
	if !ok {
		return notFound("%s: `%s` resolves to nothing", src.path, q)
	}
	info := src.declInfo(d)
	if asJSON {
		return writeJSON(w, info)
	}
	writeDecl(w, info)
	if info.Signature != "" {
		fmt.Fprintf(w, "    %s\n", info.Signature) //nolint:errcheck
	}
	return nil
}
