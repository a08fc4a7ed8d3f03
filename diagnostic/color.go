// Copyright © 2024 The rsresolve authors

package diagnostic

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when writing to a terminal and NO_COLOR is unset
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// ParseColorMode maps the --color flag values "auto", "always" and "never"
// to a ColorMode. Unknown values mean ColorAuto.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Enabled reports whether output to w should be colored.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return isTerminal(fileFromWriter(w))
	}
}

// palette holds the styles of diagnostic output.
type palette struct {
	bold     *color.Color
	boldRed  *color.Color
	yellow   *color.Color
	boldCyan *color.Color
	boldBlue *color.Color
}

func newPalette(enabled bool) palette {
	style := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		bold:     style(color.Bold),
		boldRed:  style(color.FgRed, color.Bold),
		yellow:   style(color.FgYellow),
		boldCyan: style(color.FgCyan, color.Bold),
		boldBlue: style(color.FgBlue, color.Bold),
	}
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// fileFromWriter extracts the *os.File behind w, if any.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
