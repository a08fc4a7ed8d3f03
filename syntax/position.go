// Copyright © 2024 The rsresolve authors

package syntax

import (
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16Position converts a byte offset to a 0-based line and UTF-16 column,
// the unit LSP clients count in.
func (t *Tree) UTF16Position(offset int) (line, col int) {
	line, byteCol := t.Position(offset)
	start := t.lines[line]
	col = 0
	for i := start; i < start+byteCol; {
		r, size := utf8.DecodeRune(t.src[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		col += n
		i += size
	}
	return line, col
}

// OffsetUTF16 converts a 0-based line and UTF-16 column to a byte offset.
func (t *Tree) OffsetUTF16(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(t.lines) {
		return len(t.src)
	}
	i := t.lines[line]
	end := t.lineEnd(line)
	for units := 0; i < end && units < col; {
		r, size := utf8.DecodeRune(t.src[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
		i += size
	}
	return i
}
