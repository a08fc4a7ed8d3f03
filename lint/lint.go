// Copyright © 2024 The rsresolve authors

// Package lint provides static checks for Rust source files built on name
// resolution.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed tree together with its semantic analysis and
// reports diagnostics. The framework handles parsing, running analyzers,
// collecting results, and formatting output.
package lint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/parser"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// ErrUnknownAnalyzer is returned by Select for a name no analyzer has.
var ErrUnknownAnalyzer = errors.New("unknown analyzer")

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "unused-binding").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Tree is the parsed file.
	Tree *syntax.Tree

	// Semantics holds the declarations and resolved references of Tree.
	Semantics *analysis.Result

	// Engine is the engine Semantics was computed with.
	Engine *resolve.Engine

	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic covering r.
func (p *Pass) Reportf(r syntax.TextRange, format string, args ...interface{}) {
	p.Report(p.Diagnostic(r, fmt.Sprintf(format, args...)))
}

// Diagnostic returns a diagnostic with its position and range set from r.
func (p *Pass) Diagnostic(r syntax.TextRange, msg string) Diagnostic {
	return Diagnostic{
		Pos:     PositionOf(p.Tree, r.Start),
		Range:   r,
		Message: msg,
	}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Range is the byte range of the problem within the file.
	Range syntax.TextRange `json:"-"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code. Line and Col are 1-based;
// Col counts bytes.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// PositionOf returns the 1-based position of offset in tree.
func PositionOf(tree *syntax.Tree, offset int) Position {
	line, col := tree.Position(offset)
	return Position{File: tree.Filename(), Line: line + 1, Col: col + 1}
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line:col: message
// (analyzer) with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Config is passed to analysis.Analyze. Nil means the defaults.
	Config *analysis.Config
}

// LintFile parses, analyzes and lints a single source file.
func (l *Linter) LintFile(ctx context.Context, source []byte, filename string) ([]Diagnostic, error) {
	tree, err := parser.Parse(ctx, filename, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return l.LintTree(tree, analysis.Analyze(tree, l.Config))
}

// LintTree runs the analyzers over an already analyzed tree.
func (l *Linter) LintTree(tree *syntax.Tree, semantics *analysis.Result) ([]Diagnostic, error) {
	if semantics == nil {
		semantics = analysis.Analyze(tree, l.Config)
	}
	engine := resolve.Default()
	if l.Config != nil && l.Config.Engine != nil {
		engine = l.Config.Engine
	}
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer:  analyzer,
			Filename:  tree.Filename(),
			Tree:      tree,
			Semantics: semantics,
			Engine:    engine,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", tree.Filename(), analyzer.Name, err)
		}
		all = append(all, pass.diagnostics...)
	}

	all = filterSuppressed(all, nolintLines(tree))
	sortDiagnostics(all)
	return all, nil
}

// LintFiles lints every path with up to jobs files in flight. The first
// read or parse error cancels the remaining work.
func (l *Linter) LintFiles(ctx context.Context, paths []string, jobs int) ([]Diagnostic, error) {
	if jobs <= 0 {
		jobs = 1
	}
	results := make([][]Diagnostic, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			diags, err := l.LintFile(ctx, src, path)
			if err != nil {
				return err
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []Diagnostic
	for _, diags := range results {
		all = append(all, diags...)
	}
	sortDiagnostics(all)
	return all, nil
}

func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// nolintLines maps 1-based lines to their nolint directive: "" suppresses
// every analyzer, otherwise a comma separated list of analyzer names.
func nolintLines(tree *syntax.Tree) map[int]string {
	lines := make(map[int]string)
	for _, c := range astutil.Comments(tree) {
		text := c.Text()
		switch {
		case strings.HasPrefix(text, "//"):
			text = strings.TrimLeft(text, "/!")
		case strings.HasPrefix(text, "/*"):
			text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		}
		text = strings.TrimSpace(text)
		if !strings.HasPrefix(text, "nolint") {
			continue
		}
		rest := strings.TrimPrefix(text, "nolint")
		line := astutil.LineOf(c)
		switch {
		case rest == "":
			lines[line] = ""
		case strings.HasPrefix(rest, ":"):
			if names := strings.Fields(strings.TrimPrefix(rest, ":")); len(names) > 0 {
				lines[line] = names[0]
			}
		}
	}
	return lines
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, nolint map[int]string) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolint[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

var (
	posColor  = color.New(color.Bold)
	noteColor = color.New(color.FgCyan)
	sevColors = map[Severity]*color.Color{
		SeverityError:   color.New(color.FgRed, color.Bold),
		SeverityWarning: color.New(color.FgYellow, color.Bold),
		SeverityInfo:    color.New(color.FgBlue),
	}
)

// FormatColor writes diagnostics like FormatText with the severity spelled
// out and highlighted. Colors follow color.NoColor.
func FormatColor(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		sev, ok := sevColors[d.Severity]
		if !ok {
			sev = sevColors[SeverityWarning]
		}
		//nolint:errcheck // best-effort output to writer
		fmt.Fprintf(w, "%s: %s: %s (%s)\n", posColor.Sprint(d.Pos), sev.Sprint(d.Severity), d.Message, d.Analyzer)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", noteColor.Sprint("= note:"), n) //nolint:errcheck
		}
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerUnresolvedName,
		AnalyzerUnresolvedImport,
		AnalyzerUseBeforeLet,
		AnalyzerUnusedBinding,
		AnalyzerShadowedBinding,
	}
}

// Select filters analyzers. A non-empty enable keeps only the named
// analyzers; disable then removes names. Unknown names are an error.
func Select(analyzers []*Analyzer, enable, disable []string) ([]*Analyzer, error) {
	byName := make(map[string]bool, len(analyzers))
	for _, a := range analyzers {
		byName[a.Name] = true
	}
	check := func(names []string) (map[string]bool, error) {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			if !byName[n] {
				return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyzer, n)
			}
			set[n] = true
		}
		return set, nil
	}
	on, err := check(enable)
	if err != nil {
		return nil, err
	}
	off, err := check(disable)
	if err != nil {
		return nil, err
	}
	var out []*Analyzer
	for _, a := range analyzers {
		if len(on) > 0 && !on[a.Name] {
			continue
		}
		if off[a.Name] {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
