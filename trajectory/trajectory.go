// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package trajectory reads files that hold several XYZ records back to
// back, one per frame, each separated from the next by a line break.
package trajectory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/MolCrafts/molpack/chemfile"
	"github.com/MolCrafts/molpack/chemfile/xyz"
	"github.com/spf13/afero"
)

// Trajectory is the ordered list of frames read from one input.
type Trajectory struct {
	Name   string        `json:"name"`
	Frames []*xyz.Record `json:"frames"`
}

// Len returns the number of frames.
func (t *Trajectory) Len() int {
	return len(t.Frames)
}

// WriteTo writes every frame, each followed by a line break.
func (t *Trajectory) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, frame := range t.Frames {
		n, err := frame.WriteTo(w)
		total += n
		if err != nil {
			return total, fmt.Errorf("frame %d: %w", i+1, err)
		}
	}
	return total, nil
}

// Reader reads trajectories. It holds no state between calls and is
// safe for concurrent use.
type Reader struct {
	fs        afero.Fs
	logger    *slog.Logger
	maxFrames int
}

// New returns a Reader that loads from the OS filesystem, does not log,
// and accepts any number of frames, adjusted by the options.
func New(options ...Option) (*Reader, error) {
	r := &Reader{
		fs: afero.NewOsFs(),
	}
	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load reads the file at path and parses every frame in it.
// The file must be valid UTF-8.
func Load(ctx context.Context, path string, options ...Option) (*Trajectory, error) {
	r, err := New(options...)
	if err != nil {
		return nil, err
	}
	return r.Load(ctx, path)
}

// Read parses every frame in input.
func Read(ctx context.Context, name, input string, options ...Option) (*Trajectory, error) {
	r, err := New(options...)
	if err != nil {
		return nil, err
	}
	return r.Read(ctx, name, input)
}

func (r *Reader) Load(ctx context.Context, path string) (*Trajectory, error) {
	started := time.Now()
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, &ReadError{Op: "read", Path: path, Err: err}
	}
	t, err := r.Decode(ctx, path, data)
	if err != nil {
		return nil, err
	}
	r.debug("load", "path", path, "bytes", len(data), "frames", t.Len(), "elapsed", time.Since(started))
	return t, nil
}

// Decode parses data read from path, which must be valid UTF-8.
// The trajectory is named after the last element of path.
func (r *Reader) Decode(ctx context.Context, path string, data []byte) (*Trajectory, error) {
	if !utf8.Valid(data) {
		return nil, &ReadError{Op: "decode", Path: path, Err: ErrNotUTF8}
	}
	return r.Read(ctx, filepath.Base(path), string(data))
}

// Read parses frames until only blank lines are left.
//
// A frame is separated from the next by one line break. The check for
// ctx cancellation happens between frames.
func (r *Reader) Read(ctx context.Context, name, input string) (*Trajectory, error) {
	t := &Trajectory{Name: name, Frames: []*xyz.Record{}}
	c := xyz.NewCursor(input)
	for !c.IsBlank() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := c.Offset()
		if r.maxFrames > 0 && t.Len() == r.maxFrames {
			return nil, &FrameError{Index: t.Len(), Offset: start, Err: fmt.Errorf("%w: limit is %d", ErrTooManyFrames, r.maxFrames)}
		}
		frame, err := xyz.ParseRecord(c)
		if err != nil {
			return nil, &FrameError{Index: t.Len(), Offset: start, Err: err}
		}
		t.Frames = append(t.Frames, frame)
		r.debug("frame", "name", name, "frame", t.Len(), "atoms", frame.Len(), "offset", start)

		// a frame with atoms stops before its line break; one without
		// atoms has already consumed the break after its title.
		if !c.SkipLineEnding() && frame.Len() > 0 && !c.AtEnd() {
			err := chemfile.NewParseError("xyz", xyz.ErrTrailingContent, xyz.LabelFile, "", input, c.Offset(),
				"frames must be separated by a line break")
			return nil, &FrameError{Index: t.Len() - 1, Offset: start, Err: err}
		}
	}
	return t, nil
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Debug("trajectory: "+msg, args...)
}
