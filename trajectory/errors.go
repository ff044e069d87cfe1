// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package trajectory

import (
	"errors"
	"fmt"
)

var (
	ErrNotUTF8       = errors.New("input is not valid UTF-8")
	ErrTooManyFrames = errors.New("too many frames")
)

// ReadError is returned when reading the input file fails.
type ReadError struct {
	Op   string // read, decode
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// FrameError is returned when a frame fails to parse.
// Index is 0-based; Offset is where the frame starts in the input.
type FrameError struct {
	Index  int
	Offset int
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index+1, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
