// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package trajectory

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
)

type Option func(r *Reader) error

// WithFS sets the filesystem Load reads from.
func WithFS(fs afero.Fs) Option {
	return func(r *Reader) error {
		if fs == nil {
			return fmt.Errorf("filesystem: want non-nil")
		}
		r.fs = fs
		return nil
	}
}

// WithLogger logs frame progress at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) error {
		r.logger = logger
		return nil
	}
}

// WithMaxFrames rejects inputs with more than n frames.
// Zero, the default, means no limit.
func WithMaxFrames(n int) Option {
	return func(r *Reader) error {
		if n < 0 {
			return fmt.Errorf("max frames: want >= 0, got %d", n)
		}
		r.maxFrames = n
		return nil
	}
}
