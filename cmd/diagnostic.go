// Copyright © 2024 The rsresolve authors

package cmd

import (
	"io"
	"os"

	"github.com/luthersystems/rsresolve/diagnostic"
	lintpkg "github.com/luthersystems/rsresolve/lint"
)

// newRenderer returns a renderer that reads source from disk, except for
// the files in sources.
func newRenderer(sources map[string][]byte) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: colorMode(),
		SourceReader: func(file string) ([]byte, error) {
			if src, ok := sources[file]; ok {
				return src, nil
			}
			return os.ReadFile(file) //nolint:gosec // CLI tool reads user-specified files
		},
	}
}

func diagnosticSeverity(s lintpkg.Severity) diagnostic.Severity {
	switch s {
	case lintpkg.SeverityError:
		return diagnostic.SeverityError
	case lintpkg.SeverityWarning:
		return diagnostic.SeverityWarning
	default:
		return diagnostic.SeverityNote
	}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnosticSeverity(ld.Severity),
		Message:  ld.Message + " (" + ld.Analyzer + ")",
	}
	if ld.Pos.Line > 0 {
		span := diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}
		if n := ld.Range.Len(); n > 0 && ld.Pos.Col > 0 {
			span.EndCol = ld.Pos.Col + n - 1
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" at the end of this line")
	return d
}

// renderLintDiagnostics renders lint diagnostics with source snippets.
func renderLintDiagnostics(w io.Writer, diags []lintpkg.Diagnostic, sources map[string][]byte) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	return newRenderer(sources).RenderAll(w, ds)
}
