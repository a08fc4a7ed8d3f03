// Copyright © 2024 The rsresolve authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Renderer formats diagnostics as annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := newPalette(r.Color.Enabled(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)
	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}
	for _, note := range d.Notes {
		ew.printf("   %s note: %s\n", p.boldCyan.Sprint("="), note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	sev := p.boldRed
	switch d.Severity {
	case SeverityWarning:
		sev = p.yellow
	case SeverityNote:
		sev = p.boldCyan
	}
	ew.printf("%s: %s\n", sev.Sprint(d.Severity), p.bold.Sprint(d.Message))
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	ew.printf("  %s %s\n", p.boldBlue.Sprint("-->"), loc)

	source, ok := r.readSourceLine(span.File, span.Line)
	if !ok {
		ew.printf("   %s\n", p.boldBlue.Sprint("|"))
		return
	}

	lineStr := strconv.Itoa(span.Line)
	pad := strings.Repeat(" ", len(lineStr))
	gutter := p.boldBlue.Sprint(pad + " |")

	ew.printf(" %s\n", gutter)
	ew.printf(" %s  %s\n", p.boldBlue.Sprint(lineStr+" |"), strings.ReplaceAll(source, "\t", "    "))

	col := max(span.Col, 1)
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = identEndCol(source, col)
	}
	endCol = max(endCol, col)

	var prefix, marked string
	if col-1 <= len(source) {
		prefix = source[:col-1]
		marked = source[col-1 : min(endCol, len(source))]
	}
	under := strings.Repeat("^", max(displayWidth(marked), 1))
	ew.printf(" %s  %s%s", gutter, strings.Repeat(" ", displayWidth(prefix)), p.boldRed.Sprint(under))
	if span.Label != "" {
		ew.printf(" %s", p.boldRed.Sprint(span.Label))
	}
	ew.print("\n")
	ew.printf(" %s\n", gutter)
}

func (r *Renderer) readSourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" || file == "<stdin>" {
		return "", false
	}
	reader := r.SourceReader
	if reader == nil {
		reader = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	data, err := reader(file)
	if err != nil {
		return "", false
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for i := 1; scanner.Scan(); i++ {
		if i == line {
			return scanner.Text(), true
		}
	}
	return "", false
}

// identEndCol returns the 1-based inclusive end column of the identifier
// starting at col, or col when no identifier starts there.
func identEndCol(source string, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	end := col - 1
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if ch != '_' && !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			break
		}
		end += size
	}
	if end == col-1 {
		return col
	}
	return end
}

// displayWidth returns the terminal column width of s, expanding tabs to
// 4 spaces.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 4
		} else {
			w += runewidth.RuneWidth(ch)
		}
	}
	return w
}
