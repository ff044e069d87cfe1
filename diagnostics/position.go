// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position represents a position in the original source code.
// Line and Column are 1-based, Offset is 0-based.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, character column
	Offset int // byte index into input (0-based)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in the source: [Start, End).
type Span struct {
	// Byte offsets into the original input.
	// End is exclusive: input[Start:End] is the text of the span.
	Start int
	End   int

	// 1-based line and column of the *start* of the span.
	Line   int
	Column int
}

// Len is the length of the span, in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text is a helper to return the original text of the span.
func (s Span) Text(input string) string {
	return input[s.Start:s.End]
}

// Position returns the start of the span.
func (s Span) Position() Position {
	return Position{Line: s.Line, Column: s.Column, Offset: s.Start}
}

// Locate converts a byte offset into a line and column.
//
// Only LF counts as a line break, so the CR of a CR+LF pair is the
// last character of its line. Offsets outside the input are clamped.
func Locate(src string, offset int) Position {
	offset = clamp(offset, len(src))
	before := src[:offset]
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   strings.Count(before, "\n") + 1,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
		Offset: offset,
	}
}

// SpanAt returns the span of the single character that starts at offset.
//
// Grammar rules fail at the first byte of one token, so the span is
// widened to the next character boundary. At end of input the span is
// empty. An offset inside a multibyte rune is moved back to the start
// of that rune.
func SpanAt(src string, offset int) Span {
	start := clamp(offset, len(src))
	for start > 0 && start < len(src) && !utf8.RuneStart(src[start]) {
		start--
	}
	end := start
	if end < len(src) {
		_, w := utf8.DecodeRuneInString(src[end:])
		end += w
	}
	pos := Locate(src, start)
	return Span{
		Start:  start,
		End:    end,
		Line:   pos.Line,
		Column: pos.Column,
	}
}

func clamp(offset, length int) int {
	if offset < 0 {
		return 0
	} else if offset > length {
		return length
	}
	return offset
}
