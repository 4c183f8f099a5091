package cst

import "sort"

// Span is a byte offset and length into a single document's source.
type Span struct {
	Start uint32
	Len   uint32
}

// End returns the exclusive end offset.
func (s Span) End() uint32 {
	return s.Start + s.Len
}

// Cover returns the smallest Span containing both s and o. If either is the
// zero Span with Len 0 at offset 0 it is still included; callers needing to
// ignore empty spans should filter before calling.
func Cover(spans ...Span) Span {
	if len(spans) == 0 {
		return Span{}
	}
	start := spans[0].Start
	end := spans[0].End()
	for _, sp := range spans[1:] {
		if sp.Start < start {
			start = sp.Start
		}
		if sp.End() > end {
			end = sp.End()
		}
	}
	return Span{Start: start, Len: end - start}
}

// ColumnEncoding selects how LineIndex converts a byte offset within a line
// into a column number.
type ColumnEncoding int

const (
	UTF8Columns ColumnEncoding = iota
	UTF16Columns
	UTF32Columns
)

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// LineIndex precomputes line-start byte offsets for a document so that
// offset -> (line, col) lookups are O(log n) instead of an O(n) scan.
type LineIndex struct {
	src        []byte
	lineStarts []uint32 // lineStarts[i] = byte offset of first byte of line i (0-based)
}

// NewLineIndex builds a LineIndex over src. src is retained (not copied) for
// column computation; callers must not mutate it afterward.
func NewLineIndex(src []byte) *LineIndex {
	li := &LineIndex{src: src, lineStarts: []uint32{0}}
	for i, b := range src {
		if b == '\n' {
			li.lineStarts = append(li.lineStarts, uint32(i+1))
		}
	}
	return li
}

// Position converts a byte offset to a 1-based (line, column) pair using the
// requested column encoding.
func (li *LineIndex) Position(offset uint32, enc ColumnEncoding) Position {
	// binary search for the line whose start is <= offset
	i := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	})
	line := i - 1
	if line < 0 {
		line = 0
	}
	lineStart := li.lineStarts[line]
	col := li.columnOf(lineStart, offset, enc)
	return Position{Line: line + 1, Column: col + 1}
}

func (li *LineIndex) columnOf(lineStart, offset uint32, enc ColumnEncoding) int {
	chunk := li.src[lineStart:offset]
	switch enc {
	case UTF16Columns:
		col := 0
		for _, r := range string(chunk) {
			if r > 0xFFFF {
				col += 2 // surrogate pair
			} else {
				col++
			}
		}
		return col
	case UTF32Columns:
		col := 0
		for range string(chunk) {
			col++
		}
		return col
	default: // UTF8Columns: count bytes
		return len(chunk)
	}
}

// LineCount returns the number of lines recorded by the index.
func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}
