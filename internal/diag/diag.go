// Package diag maps byte offsets in expression source to human-readable
// positions and renders caret annotations for error reporting.
package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a 1-based line and column. Columns count runes, not bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// PositionAt locates a byte offset in source. Offsets past the end of the
// source resolve to one column past the last character.
func PositionAt(source string, offset int) Position {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(source[lineStart:offset]) + 1,
	}
}

// Annotate renders the source line containing the span [start, end) with a
// caret run underneath and the message alongside:
//
//	 1 | $[?@.price < ]
//	   |              ^ unexpected ']'
//
// A span that covers no characters still gets a single caret.
func Annotate(source string, start, end int, msg string) string {
	if start > len(source) {
		start = len(source)
	}
	if end < start {
		end = start
	}

	pos := PositionAt(source, start)
	lineStart := start - (byteColumn(source, start))
	lineEnd := strings.IndexByte(source[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd += start
	}
	line := source[lineStart:lineEnd]

	carets := utf8.RuneCountInString(source[start:min(end, lineEnd)])
	if carets < 1 {
		carets = 1
	}

	num := fmt.Sprintf("%2d", pos.Line)
	gutter := strings.Repeat(" ", len(num))
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s\n", num, line)
	fmt.Fprintf(&b, "%s | %s%s %s", gutter, strings.Repeat(" ", pos.Column-1), strings.Repeat("^", carets), msg)
	return b.String()
}

// byteColumn returns the byte distance from the start of the line containing
// offset to offset itself.
func byteColumn(source string, offset int) int {
	i := strings.LastIndexByte(source[:offset], '\n')
	return offset - (i + 1)
}
