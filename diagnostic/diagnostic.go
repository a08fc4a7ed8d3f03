// Copyright © 2024 The rsresolve authors

// Package diagnostic renders messages about Rust source as annotated
// snippets in the style of rustc:
//
//	warning: unused let binding `x`
//	  --> src/main.rs:3:9
//	   |
//	 3 |      let x = 1;
//	   |          ^ never referenced
//	   = note: if this is intentional, prefix it with an underscore: `_x`
//
// It depends on no other package of this module so that any command can
// use it.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column, in bytes
	EndCol int    // 1-based inclusive end column (0 = end of the identifier at Col)
	Label  string // text shown after the underline
}

// Diagnostic is a single message with optional source annotations and
// trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string
}
