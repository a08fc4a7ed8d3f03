// Copyright © 2024 The rsresolve authors

package syntax

import "fmt"

// TextRange is a half-open byte range [Start, End) into a tree's source.
type TextRange struct {
	Start int
	End   int
}

// EmptyRange is the zero-width range at offset 0.
var EmptyRange TextRange

// Len returns the number of bytes covered by the range.
func (r TextRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no bytes.
func (r TextRange) IsEmpty() bool {
	return r.Len() == 0
}

// Contains reports whether offset lies inside the range. The end offset is
// included so that a cursor placed right after an identifier still hits it.
func (r TextRange) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// Covers reports whether other lies entirely within r.
func (r TextRange) Covers(other TextRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps reports whether r and other share at least one byte.
func (r TextRange) Overlaps(other TextRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Relative returns r expressed relative to the start of outer.
func (r TextRange) Relative(outer TextRange) TextRange {
	return TextRange{Start: r.Start - outer.Start, End: r.End - outer.Start}
}

// Shift returns r moved by delta bytes.
func (r TextRange) Shift(delta int) TextRange {
	return TextRange{Start: r.Start + delta, End: r.End + delta}
}

func (r TextRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
