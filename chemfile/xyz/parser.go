// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package xyz

import (
	"encoding"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

/*
Grammar:

	Record         := Count LooseEnd Title LooseEnd AtomLine (LooseEnd AtomLine)* Spaces?
	Count          := Digit+
	Title          := AnyCharExceptLineEnd*
	AtomLine       := Symbol Spaces+ Float Spaces+ Float Spaces+ Float
	Symbol         := AlphaNum+
	Float          := Sign? Digit+ ('.' Digit+)? (('e'|'E') Sign? Digit+)?
	LooseEnd       := Spaces? LineTerminator
	LineTerminator := '\n' | '\r\n'
	Spaces         := (' ' | '\t')*

AtomLine repeats exactly Count times. With a Count of zero the record
ends after the title's line terminator.

Every rule is a fixed position, non-optional field, so the parser never
backtracks past a rule boundary; one byte of lookahead decides each step.
The spaces after the last atom are consumed but its line terminator is
not, so a second record can follow in the same buffer.
*/

// Cursor is a read position in a buffer that may hold several records.
type Cursor struct {
	input string
	pos   int
}

// NewCursor returns a cursor at the start of input.
func NewCursor(input string) *Cursor {
	return &Cursor{input: input}
}

// Offset returns the byte offset of the cursor in the buffer.
func (c *Cursor) Offset() int {
	return c.pos
}

// Input returns the whole buffer.
func (c *Cursor) Input() string {
	return c.input
}

// Remaining returns the unread part of the buffer.
func (c *Cursor) Remaining() string {
	return c.input[c.pos:]
}

// AtEnd reports whether the whole buffer has been read.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.input)
}

// IsBlank reports whether only spaces and line breaks are left.
func (c *Cursor) IsBlank() bool {
	s := scanner{input: c.input, pos: c.pos}
	return s.restIsBlank()
}

// SkipLineEnding consumes optional spaces and one line terminator.
// It reports false, and does not move, when there is no terminator.
func (c *Cursor) SkipLineEnding() bool {
	s := scanner{input: c.input, pos: c.pos}
	if !s.scanLooseEnd() {
		return false
	}
	c.pos = s.pos
	return true
}

// ParseRecord parses one record starting at the cursor.
//
// On success the cursor is moved past the record, including the spaces
// after the last atom but not the line terminator that follows them.
// On failure the cursor does not move and the error is a
// *chemfile.ParseError with offsets into the cursor's whole buffer.
func ParseRecord(c *Cursor) (*Record, error) {
	p := &parser{scanner: scanner{input: c.input, pos: c.pos}}
	r, err := p.record()
	if err != nil {
		return nil, err
	}
	c.pos = p.pos
	return r, nil
}

// Parse parses text that must hold exactly one record and nothing else,
// not even a trailing line break.
func Parse(text string) (*Record, error) {
	c := NewCursor(text)
	r, err := ParseRecord(c)
	if err != nil {
		return nil, err
	}
	if !c.AtEnd() {
		return nil, newError(ErrTrailingContent, LabelFile, "", text, c.pos,
			"the record ends after its last atom")
	}
	return r, nil
}

var _ encoding.TextUnmarshaler = (*Record)(nil)

// UnmarshalText implements encoding.TextUnmarshaler with Parse.
// The receiver is left untouched on error.
func (r *Record) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

type parser struct {
	scanner
}

func (p *parser) record() (*Record, error) {
	n, err := p.header()
	if err != nil {
		return nil, err
	}
	title, err := p.title()
	if err != nil {
		return nil, err
	}
	atoms, err := p.atoms(n)
	if err != nil {
		return nil, err
	}
	return &Record{
		Title: title,
		Atoms: atoms,
	}, nil
}

// header returns the number of atoms declared on the first line.
func (p *parser) header() (int, error) {
	start := p.pos
	digits := p.scanDigits()
	if digits == "" {
		return 0, newError(ErrHeader, LabelCount, "", p.input, p.pos, "the first line must hold the number of atoms")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, newError(ErrHeader, LabelCount, "", p.input, start, "number of atoms is out of range")
	}
	if !p.scanLooseEnd() {
		return 0, newError(ErrHeader, LabelCount, "", p.input, p.pos, "the number of atoms must be alone on its line")
	}
	return n, nil
}

func (p *parser) title() (string, error) {
	title, ok := p.scanTitle()
	if !ok {
		return "", newError(ErrTitleUnterminated, LabelTitle, "", p.input, len(p.input), "unexpected end of input")
	}
	return strings.Clone(title), nil
}

// atoms parses exactly n atom lines.
func (p *parser) atoms(n int) ([]Atom, error) {
	// the header is untrusted, so size the slice by what the input can hold.
	// the shortest atom line, "C 0 0 0", is seven bytes.
	atoms := make([]Atom, 0, min(n, (len(p.input)-p.pos)/7+1))

	end := p.pos // end of the last atom parsed, or of the title line
	for i := 0; i < n; i++ {
		if p.restIsBlank() {
			return nil, newError(ErrAtomListTruncated, LabelAtoms, "", p.input, end,
				fmt.Sprintf("expected %d atoms, found %d", n, i))
		}
		if i > 0 && !p.scanLooseEnd() {
			// the previous line has more than four fields
			return nil, p.atomError(p.pos, i-1, n)
		}
		atom, err := p.atom(i, n)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
		end = p.pos
	}
	if n > 0 {
		p.scanSpaces()
	}
	return atoms, nil
}

// atom parses one AtomLine. i and n are only used in error notes.
func (p *parser) atom(i, n int) (Atom, error) {
	symbol := p.scanSymbol()
	if symbol == "" {
		return Atom{}, p.atomError(p.pos, i, n)
	}
	var coords [3]float64
	for k := range coords {
		if p.scanSpaces() == 0 {
			return Atom{}, p.atomError(p.pos, i, n)
		}
		v, err := p.scanFloat()
		if errors.Is(err, errNumberRange) {
			return Atom{}, p.atomError(p.pos, i, n, "coordinate is out of range")
		} else if err != nil {
			return Atom{}, p.atomError(p.pos, i, n)
		}
		coords[k] = v
	}
	return Atom{
		Symbol: strings.Clone(symbol),
		X:      coords[0],
		Y:      coords[1],
		Z:      coords[2],
	}, nil
}

func (p *parser) atomError(offset, i, n int, notes ...string) error {
	notes = append([]string{fmt.Sprintf("atom %d of %d", i+1, n)}, notes...)
	return newError(ErrAtomFormat, LabelAtom, AtomShape, p.input, offset, notes...)
}
