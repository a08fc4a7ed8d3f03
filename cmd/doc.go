// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/docs"
	"github.com/luthersystems/rsresolve/query"
	"github.com/luthersystems/rsresolve/resolve"
)

type docOptions struct {
	members bool
	list    bool
	guide   bool
}

// newDocCommand represents the doc command
func newDocCommand(cfg *cmdConfig) *cobra.Command {
	var opts docOptions
	cmd := &cobra.Command{
		Use:   "doc [flags] [FILE [QUERY]]",
		Short: "Show the signature and doc comment of an item",
		Long: `Show the signature and /// doc comment of the item QUERY names in FILE.

QUERY is a path resolved at file scope, a path followed by @LINE:COL, or a
bare LINE:COL naming the item at that position.

Use -m to list the members of a module or the variants of an enum. Use -l
to list every item of FILE, nested modules included. Use --guide to print
the rules rsresolve follows when resolving names.

Examples:
  rsresolve doc src/lib.rs geo::area      Show docs for geo::area
  rsresolve doc src/lib.rs 14:8           Show docs for the item at 14:8
  rsresolve doc -m src/lib.rs geo         List the members of module geo
  rsresolve doc -l src/lib.rs             List all items in the file
  rsresolve doc --guide                   Show the name resolution guide`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if opts.guide {
				fmt.Fprint(w, docs.ResolutionGuide) //nolint:errcheck
				return nil
			}
			if len(args) == 0 {
				return badInvocation(fmt.Errorf("doc: want FILE QUERY, -l FILE or --guide"))
			}
			if !opts.list && len(args) != 2 {
				return badInvocation(fmt.Errorf("doc: want FILE QUERY, or -l FILE"))
			}
			src, err := loadSource(commandContext(cmd), args[0], cfg.analysisConfig(args[0]))
			if err != nil {
				return badInvocation(err)
			}
			if opts.list {
				writeItemList(w, src)
				return nil
			}
			q, err := query.Parse(args[1])
			if err != nil {
				return badInvocation(err)
			}
			return runDoc(w, src, q, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.members, "members", "m", false,
		"List the members of the module or enum named by QUERY.")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false,
		"List all items declared in FILE.")
	cmd.Flags().BoolVar(&opts.guide, "guide", false,
		"Print the name resolution guide.")
	return cmd
}

// findDecl returns the declaration q names in src.
func findDecl(src *source, q query.Query) (resolve.Decl, error) {
	if q.HasPath() {
		d, ok, err := q.Eval(src.engine, src.tree)
		if err != nil {
			return resolve.Decl{}, badInvocation(err)
		}
		if !ok {
			return resolve.Decl{}, notFound("%s: `%s` resolves to nothing", src.path, q)
		}
		return d, nil
	}
	offset, err := src.offset(q)
	if err != nil {
		return resolve.Decl{}, badInvocation(err)
	}
	d, ok := src.res.DeclAt(offset)
	if !ok {
		return resolve.Decl{}, notFound("%s: no resolvable name at this position", src.pos(offset))
	}
	return d, nil
}

func runDoc(w io.Writer, src *source, q query.Query, opts docOptions) error {
	d, err := findDecl(src, q)
	if err != nil {
		return err
	}
	if !opts.members {
		writeDoc(w, src.declInfo(d))
		return nil
	}
	if !d.Kind.IsNamespace() {
		return notFound("%s: %s `%s` has no members", src.path, d.Kind, d.Name)
	}
	n := 0
	for m := range resolve.Members(d) {
		writeDecl(w, src.declInfo(m))
		n++
	}
	if n == 0 {
		fmt.Fprintf(w, "%s `%s` has no members\n", d.Kind, d.Name) //nolint:errcheck
	}
	return nil
}

func writeDoc(w io.Writer, info declInfo) {
	sig := info.Signature
	if sig == "" {
		sig = info.Name
	}
	fmt.Fprintln(w, nameColor.Sprint(sig))
	fmt.Fprintf(w, "    %s\n", faintColor.Sprintf("%s declared at %s", info.Kind, info.Pos))
	if info.Doc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, indent.String(wordwrap.String(info.Doc, 72), 4))
	}
}

// writeItemList prints the items of src, one per line.
func writeItemList(w io.Writer, src *source) {
	for _, sym := range analysis.FileSymbols(src.tree) {
		name := sym.Name
		if sym.Container != "" {
			name = sym.Container + "::" + name
		}
		pos := src.pos(sym.Range.Start)
		fmt.Fprintf(w, "%-32s %-12s %s\n", name, sym.Kind, faintColor.Sprint(pos)) //nolint:errcheck
	}
}

// itemNames returns the qualified names of the items of src.
func itemNames(src *source) []string {
	var names []string
	for _, sym := range analysis.FileSymbols(src.tree) {
		names = append(names, strings.TrimPrefix(sym.Container+"::"+sym.Name, "::"))
	}
	return names
}
