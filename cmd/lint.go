// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/rsresolve/lint"
)

type lintOptions struct {
	json     bool
	short    bool
	checks   string
	disable  string
	listAll  bool
	excludes []string
	jobs     int
}

// LintCommand creates the "lint" cobra command with optional embedder
// configuration. Embedders can pass WithExternalCrates or WithAnalyzers to
// describe their crate's dependencies and add checks.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var o lintOptions

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Report unresolved and unused names in Rust source files",
		Long: `Report unresolved and unused names in Rust source files.

The linter reports likely mistakes found by name resolution, similar to
"go vet" for Go. Each check is an independent analyzer over the resolved
syntax tree. Type errors, borrow errors and style issues are not reported.

With no files, reads from stdin. A directory or a pattern ending in "/..."
stands for every .rs file below it; target and hidden directories are
skipped.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment at the end of the line:
  let x = 1; // nolint:unused-binding

To suppress all checks on a line:
  let x = 1; // nolint

Checks are configured under the lint key of the config file:
  lint:
    checks: [unresolved-name, unresolved-import]
    exclude: [generated]

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  rsresolve lint src/main.rs                           # Lint a single file
  rsresolve lint ./...                                 # Lint every .rs file below .
  rsresolve lint --json src/main.rs                    # Output diagnostics as JSON
  rsresolve lint --short src/                          # One line per diagnostic
  rsresolve lint --checks=unresolved-name src/         # Run only specific checks
  rsresolve lint --disable=shadowed-binding src/       # Skip a check
  rsresolve lint --list                                # List available checks
  rsresolve lint --exclude='generated' ./...           # Exclude a directory
  cat src/main.rs | rsresolve lint                     # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.listAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name) //nolint:errcheck
				}
				return nil
			}
			if !cmd.Flags().Changed("checks") {
				o.checks = strings.Join(viper.GetStringSlice("lint.checks"), ",")
			}
			if !cmd.Flags().Changed("jobs") && viper.GetInt("lint.jobs") > 0 {
				o.jobs = viper.GetInt("lint.jobs")
			}
			o.excludes = append(o.excludes, viper.GetStringSlice("lint.exclude")...)
			return runLint(cmd, cfg, args, o)
		},
	}

	cmd.Flags().BoolVar(&o.json, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().BoolVar(&o.short, "short", false,
		"Print one line per diagnostic instead of source snippets.")
	cmd.Flags().StringVar(&o.checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().StringVar(&o.disable, "disable", "",
		"Comma-separated list of checks to skip.")
	cmd.Flags().BoolVar(&o.listAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&o.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	cmd.Flags().IntVarP(&o.jobs, "jobs", "j", runtime.NumCPU(),
		"Number of files analyzed in parallel.")

	return cmd
}

func runLint(cmd *cobra.Command, cfg *cmdConfig, args []string, o lintOptions) error {
	analyzers, err := lint.Select(cfg.allAnalyzers(), splitList(o.checks), splitList(o.disable))
	if err != nil {
		return badInvocation(err)
	}
	ctx := commandContext(cmd)

	var diags []lint.Diagnostic
	if len(args) == 0 {
		l := &lint.Linter{Analyzers: analyzers, Config: cfg.analysisConfig("<stdin>")}
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return badInvocation(fmt.Errorf("reading stdin: %w", err))
		}
		diags, err = l.LintFile(ctx, src, "<stdin>")
		if err != nil {
			return badInvocation(err)
		}
	} else {
		paths, err := expandArgs(args, o.excludes)
		if err != nil {
			return badInvocation(err)
		}
		l := &lint.Linter{Analyzers: analyzers, Config: cfg.analysisConfig(paths...)}
		diags, err = l.LintFiles(ctx, paths, o.jobs)
		if err != nil {
			return badInvocation(err)
		}
	}

	if len(diags) == 0 {
		return nil
	}
	switch {
	case o.json:
		if err := lint.FormatJSON(cmd.OutOrStdout(), diags); err != nil {
			return badInvocation(err)
		}
	case o.short:
		lint.FormatColor(cmd.ErrOrStderr(), diags)
	default:
		if err := renderLintDiagnostics(cmd.ErrOrStderr(), diags, nil); err != nil {
			return badInvocation(err)
		}
	}
	return problemsFound()
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
