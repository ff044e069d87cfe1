// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package chemfile holds what the chemical file format parsers share:
// the error they return when the input does not match their grammar.
package chemfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MolCrafts/molpack/diagnostics"
)

// Kind classifies a parse failure. Formats declare their kinds as
// package level values so callers can test them with errors.Is.
type Kind struct {
	code string
	text string
}

// NewKind returns a Kind with a stable code (for storage and scripting)
// and a short description.
func NewKind(code, text string) *Kind {
	return &Kind{code: code, text: text}
}

func (k *Kind) Error() string {
	return k.text
}

// Code returns the stable code, e.g. "XYZ_ATOM_FORMAT".
func (k *Kind) Code() string {
	return k.code
}

// ParseError reports where and why an input did not match a grammar.
//
// It keeps the input so the report can be rendered again later, with
// different renderer options or into a different sink.
type ParseError struct {
	Format   string           // "xyz"
	Kind     *Kind            // one of the format's declared kinds
	Label    string           // grammar rule active at the failure, e.g. "xyz atom"
	Expected string           // optional description of what was expected
	Offset   int              // byte offset reported by the grammar
	Span     diagnostics.Span // Offset widened to one character
	Notes    []string

	input string
}

// NewParseError captures a failure at offset in input.
func NewParseError(format string, kind *Kind, label, expected, input string, offset int, notes ...string) *ParseError {
	return &ParseError{
		Format:   format,
		Kind:     kind,
		Label:    label,
		Expected: expected,
		Offset:   offset,
		Span:     diagnostics.SpanAt(input, offset),
		Notes:    notes,
		input:    input,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Format, e.Span.Position(), e.Message())
}

func (e *ParseError) Unwrap() error {
	if e.Kind == nil {
		return nil
	}
	return e.Kind
}

// Message is the context label, with the expected shape when there is one.
func (e *ParseError) Message() string {
	if e.Expected == "" {
		return "invalid " + e.Label
	}
	return fmt.Sprintf("invalid %s: expected %s", e.Label, e.Expected)
}

// Position returns the line and column of the failure.
func (e *ParseError) Position() diagnostics.Position {
	return e.Span.Position()
}

// Input returns the text that failed to parse.
func (e *ParseError) Input() string {
	return e.input
}

// Diagnostic returns the failure as a structured diagnostic.
// Severity is always error at this layer.
func (e *ParseError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Severity: slog.LevelError,
		Message:  e.Message(),
		Span:     e.Span,
		Notes:    e.Notes,
	}
}

// Render writes the annotated snippet for the failure to w.
func (e *ParseError) Render(w io.Writer, options ...diagnostics.Option) error {
	r, err := diagnostics.New(options...)
	if err != nil {
		return err
	}
	return r.Render(w, e.Diagnostic(), e.input)
}

// Snippet returns the annotated snippet with the default renderer settings.
func (e *ParseError) Snippet() string {
	r, _ := diagnostics.New()
	return r.String(e.Diagnostic(), e.input)
}

// Error code constants for errors that are not a ParseError.
const (
	ErrCodeUnknown = "UNKNOWN"
)

// ErrorCode returns the code of the Kind wrapped by err,
// or ErrCodeUnknown when err is not a parse failure.
func ErrorCode(err error) string {
	var kind *Kind
	if errors.As(err, &kind) {
		return kind.code
	}
	return ErrCodeUnknown
}
