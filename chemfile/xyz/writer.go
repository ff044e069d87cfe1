// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package xyz

import (
	"encoding"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	_ encoding.TextMarshaler = (*Record)(nil)
	_ encoding.TextAppender  = (*Record)(nil)
	_ io.WriterTo            = (*Record)(nil)
)

// AppendText appends the record as XYZ text, without a line break after
// the last atom, so Parse accepts the result as is. Coordinates use the
// shortest representation that parses back to the same float64.
func (r *Record) AppendText(b []byte) ([]byte, error) {
	if err := r.validate(); err != nil {
		return b, err
	}
	b = strconv.AppendInt(b, int64(len(r.Atoms)), 10)
	b = append(b, '\n')
	b = append(b, r.Title...)
	b = append(b, '\n')
	for i, atom := range r.Atoms {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, atom.Symbol...)
		for _, v := range []float64{atom.X, atom.Y, atom.Z} {
			b = append(b, ' ')
			b = strconv.AppendFloat(b, v, 'g', -1, 64)
		}
	}
	return b, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r *Record) MarshalText() ([]byte, error) {
	return r.AppendText(nil)
}

// WriteTo writes the record followed by a line break, the way records
// are laid out in a file.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	b, err := r.AppendText(nil)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(b, '\n'))
	return int64(n), err
}

// validate rejects records whose text would not parse back to them.
func (r *Record) validate() error {
	if strings.Contains(r.Title, "\n") || strings.HasSuffix(r.Title, "\r") {
		return fmt.Errorf("%w: title contains a line break", ErrUnwritable)
	}
	for i, atom := range r.Atoms {
		if atom.Symbol == "" {
			return fmt.Errorf("%w: atom %d: empty symbol", ErrUnwritable, i+1)
		}
		for j := 0; j < len(atom.Symbol); j++ {
			if !isalnum(atom.Symbol[j]) {
				return fmt.Errorf("%w: atom %d: symbol %q is not alphanumeric", ErrUnwritable, i+1, atom.Symbol)
			}
		}
		for _, v := range []float64{atom.X, atom.Y, atom.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: atom %d: coordinate %v is not finite", ErrUnwritable, i+1, v)
			}
		}
	}
	return nil
}
