// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/diagnostic"
	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/resolve"
)

type defOptions struct {
	json    bool
	snippet bool
}

func newDefCommand(cfg *cmdConfig) *cobra.Command {
	var opts defOptions
	cmd := &cobra.Command{
		Use:   "def FILE:LINE:COL",
		Short: "Print the declaration a name refers to",
		Long: `Print the declaration the name at FILE:LINE:COL refers to.

On a declaration's own name, def prints the declaration itself. Names of
std, core, alloc or a configured external crate are reported as external;
items reached through a type, like Vec::new, as associated.

Exit codes:
  0  The name was resolved
  1  No name at the position, or it resolves to nothing
  2  Bad invocation

Examples:
  rsresolve def src/main.rs:12:9
  rsresolve def --json src/main.rs:12:9
  rsresolve def --snippet src/main.rs:12:9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, offset, err := loadLocation(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			return runDef(cmd.OutOrStdout(), src, offset, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the declaration as JSON.")
	cmd.Flags().BoolVar(&opts.snippet, "snippet", false, "Show the declaration in its source line.")
	return cmd
}

// refInfo is the printed form of a reference that has no declaration in
// the file.
type refInfo struct {
	Path string        `json:"path"`
	Kind string        `json:"kind"`
	Pos  lint.Position `json:"pos"`
}

func runDef(w io.Writer, src *source, offset int, opts defOptions) error {
	var d resolve.Decl
	switch ref := src.res.RefAt(offset); {
	case ref == nil:
		sym := src.res.SymbolAt(offset)
		if sym == nil {
			return notFound("%s: no name at this position", src.pos(offset))
		}
		d = sym.Decl
	case ref.Kind == analysis.RefResolved:
		d = ref.Decl
	default:
		info := refInfo{
			Path: ref.Ref.Path().Text(),
			Kind: ref.Kind.String(),
			Pos:  src.pos(ref.Range().Start),
		}
		if ref.Kind == analysis.RefUnresolved {
			return notFound("%s: `%s` resolves to nothing", info.Pos, info.Path)
		}
		if opts.json {
			return writeJSON(w, info)
		}
		fmt.Fprintf(w, "%s: %s %s\n", posColor.Sprint(info.Pos), kindColor.Sprint(info.Kind), //nolint:errcheck
			nameColor.Sprintf("`%s`", info.Path))
		return nil
	}

	info := src.declInfo(d)
	switch {
	case opts.json:
		return writeJSON(w, info)
	case opts.snippet:
		return newRenderer(map[string][]byte{src.path: src.tree.Source()}).Render(w, declDiagnostic(info))
	default:
		writeDecl(w, info)
		return nil
	}
}

// declDiagnostic shows a declaration as a note pointing at its name.
func declDiagnostic(info declInfo) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityNote,
		Message:  fmt.Sprintf("%s `%s` declared here", info.Kind, info.Name),
		Spans: []diagnostic.Span{{
			File:   info.Pos.File,
			Line:   info.Pos.Line,
			Col:    info.Pos.Col,
			EndCol: info.Pos.Col + len(info.Name) - 1,
			Label:  info.Kind,
		}},
	}
	if info.Signature != "" {
		d.Notes = append(d.Notes, info.Signature)
	}
	return d
}
