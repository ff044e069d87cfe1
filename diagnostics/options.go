// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics

import "fmt"

type Option func(r *Renderer) error

// WithContextLines sets how many lines before the offending line are shown.
// Lines further away are folded out of the report.
func WithContextLines(n int) Option {
	return func(r *Renderer) error {
		if n < 0 {
			return fmt.Errorf("context lines: want >= 0, got %d", n)
		}
		r.contextLines = n
		return nil
	}
}

// WithFilename sets the name shown in the locator line.
func WithFilename(name string) Option {
	return func(r *Renderer) error {
		r.filename = name
		return nil
	}
}

func WithTabWidth(n int) Option {
	return func(r *Renderer) error {
		if n < 1 {
			return fmt.Errorf("tab width: want >= 1, got %d", n)
		}
		r.tabWidth = n
		return nil
	}
}
