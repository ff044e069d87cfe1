// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package xyz

import (
	"errors"
	"strconv"
	"strings"
)

// Scanner invariants and coordinate system
//
// The scanner treats input as an immutable UTF-8 string. The XYZ grammar
// is ASCII at every decision point, so the scanner works on bytes and
// never needs to decode a rune; multibyte characters only ever appear
// inside a title, which is taken as an opaque run of bytes.
//
// Fields:
//   input - the whole buffer, never re-sliced, so every offset the
//           scanner reports is an offset into the caller's buffer
//   pos   - index of the next unread byte, len(input) at end of input
//
// Invariants:
//   0 <= pos <= len(input)
//
// Scanners that recognize a token:
//   1. Return a zero value (empty string, 0, false) without moving pos
//      when the token does not start at pos.
//   2. Otherwise leave pos on the first byte after the token.
//
// The one exception is scanLooseEnd, which leaves pos after the spaces
// it consumed when no line terminator follows them. That is where the
// grammar wants to report the failure.

type scanner struct {
	input string
	pos   int
}

func (s *scanner) iseof() bool {
	return s.pos >= len(s.input)
}

// peek returns the byte at pos+n, or 0 past the end of input.
func (s *scanner) peek(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos+n]
}

// restIsBlank reports whether only spaces and line breaks are left.
func (s *scanner) restIsBlank() bool {
	return strings.TrimLeft(s.input[s.pos:], " \t\r\n") == ""
}

// scanSpaces accepts a run of spaces and tabs and returns its length.
func (s *scanner) scanSpaces() int {
	start := s.pos
	for isspace(s.peek(0)) {
		s.pos++
	}
	return s.pos - start
}

// scanLineEnding accepts LF or CR+LF.
func (s *scanner) scanLineEnding() bool {
	switch {
	case s.peek(0) == '\n':
		s.pos++
		return true
	case s.peek(0) == '\r' && s.peek(1) == '\n':
		s.pos += 2
		return true
	}
	return false
}

// scanLooseEnd accepts optional trailing spaces followed by a line ending.
func (s *scanner) scanLooseEnd() bool {
	s.scanSpaces()
	return s.scanLineEnding()
}

// scanDigits accepts a run of decimal digits.
func (s *scanner) scanDigits() string {
	start := s.pos
	for isdigit(s.peek(0)) {
		s.pos++
	}
	return s.input[start:s.pos]
}

// scanSymbol accepts a run of ASCII letters and digits.
func (s *scanner) scanSymbol() string {
	start := s.pos
	for isalnum(s.peek(0)) {
		s.pos++
	}
	return s.input[start:s.pos]
}

// scanTitle accepts everything up to the next line terminator and then
// the terminator itself. The title keeps any trailing spaces; only the
// CR of a CR+LF pair is dropped. It returns false, with pos unchanged,
// when the input ends before a terminator.
func (s *scanner) scanTitle() (string, bool) {
	rest := s.input[s.pos:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	s.pos += nl + 1
	return strings.TrimSuffix(rest[:nl], "\r"), true
}

var (
	errNoNumber    = errors.New("not a number")
	errNumberRange = errors.New("number out of range")
)

// scanFloat accepts Sign? Digit+ ('.' Digit+)? (('e'|'E') Sign? Digit+)?
//
// A fraction or exponent without digits is not part of the number, so
// "1.e" scans as "1" and leaves ".e" for the caller to reject. Literals
// such as "nan" or "inf" are not numbers, and a value too large for a
// float64 is errNumberRange. On error pos is unchanged.
func (s *scanner) scanFloat() (float64, error) {
	start := s.pos
	if issign(s.peek(0)) {
		s.pos++
	}
	if s.scanDigits() == "" {
		s.pos = start
		return 0, errNoNumber
	}
	if s.peek(0) == '.' && isdigit(s.peek(1)) {
		s.pos++
		s.scanDigits()
	}
	if ch := s.peek(0); ch == 'e' || ch == 'E' {
		mark := s.pos
		s.pos++
		if issign(s.peek(0)) {
			s.pos++
		}
		if s.scanDigits() == "" {
			s.pos = mark
		}
	}
	// the literal is well-formed, so the only possible error is ErrRange,
	// which ParseFloat reports for overflow to ±Inf. Underflow rounds to
	// zero without an error.
	v, err := strconv.ParseFloat(s.input[start:s.pos], 64)
	if err != nil {
		s.pos = start
		return 0, errNumberRange
	}
	return v, nil
}

func isspace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

func isdigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func issign(ch byte) bool {
	return ch == '+' || ch == '-'
}

func isalnum(ch byte) bool {
	return isdigit(ch) || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}
