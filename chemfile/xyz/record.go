// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package xyz reads and writes the XYZ molecular geometry format:
//
//	<number of atoms>
//	<title>
//	<symbol> <x> <y> <z>
//	<symbol> <x> <y> <z>
//	...
//
// Parse converts a buffer holding exactly one record. ParseRecord reads
// one record from a Cursor and leaves the rest of the buffer for the
// next call, which is how multi-frame trajectories are read.
//
// Malformed input is reported as a *chemfile.ParseError that can render
// an annotated snippet of the source. Parsing is all or nothing: no
// partially filled Record is ever returned.
package xyz

// Record is one XYZ frame.
type Record struct {
	Title string `json:"title"`
	Atoms []Atom `json:"atoms"`
}

// Atom is one atom line. The symbol is not checked against any
// periodic table; "C", "C12" and "Xx" are all accepted.
type Atom struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

// New returns a Record with the given title and no atoms.
func New(title string) *Record {
	return &Record{
		Title: title,
		Atoms: []Atom{},
	}
}

func NewAtom(symbol string, x, y, z float64) Atom {
	return Atom{
		Symbol: symbol,
		X:      x,
		Y:      y,
		Z:      z,
	}
}

// Add appends atoms to the record.
func (r *Record) Add(atoms ...Atom) *Record {
	r.Atoms = append(r.Atoms, atoms...)
	return r
}

// Len returns the number of atoms.
func (r *Record) Len() int {
	return len(r.Atoms)
}
