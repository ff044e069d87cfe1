// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package xyz

import (
	"errors"

	"github.com/MolCrafts/molpack/chemfile"
)

// Parse failures. Every error returned by Parse and ParseRecord is a
// *chemfile.ParseError wrapping exactly one of these.
var (
	ErrHeader            = chemfile.NewKind("XYZ_HEADER", "xyz: missing or invalid number of atoms")
	ErrTitleUnterminated = chemfile.NewKind("XYZ_TITLE_UNTERMINATED", "xyz: input ends in the title line")
	ErrAtomListTruncated = chemfile.NewKind("XYZ_ATOMS_TRUNCATED", "xyz: fewer atoms than declared")
	ErrAtomFormat        = chemfile.NewKind("XYZ_ATOM_FORMAT", "xyz: atom line does not match <symbol> <x> <y> <z>")
	ErrTrailingContent   = chemfile.NewKind("XYZ_TRAILING_CONTENT", "xyz: unexpected content after the record")
)

// ErrUnwritable is returned when a Record cannot be written as XYZ text
// that would parse back to the same Record.
var ErrUnwritable = errors.New("xyz: record cannot be written")

// Context labels name the grammar rule that was active when parsing failed.
const (
	LabelCount = "number of atoms"
	LabelTitle = "title"
	LabelAtoms = "atoms list"
	LabelAtom  = "xyz atom"
	LabelFile  = "XYZ file"

	// AtomShape is the expected shape of an atom line.
	AtomShape = "<symbol> <x> <y> <z>"
)

func newError(kind *chemfile.Kind, label, expected, input string, offset int, notes ...string) *chemfile.ParseError {
	return chemfile.NewParseError("xyz", kind, label, expected, input, offset, notes...)
}
