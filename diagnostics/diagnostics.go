// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package diagnostics turns a byte offset in a source text into a
// human-readable report: a line/column locator and the offending line
// with a caret underneath.
//
// It knows nothing about any grammar. Parsers report where they failed
// and what they were looking for; this package renders it.
package diagnostics

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Diagnostic represents a parser error or warning with a span in the
// original source.
type Diagnostic struct {
	Severity slog.Level // Error, Warning, Info
	Message  string     // "invalid xyz atom"
	Span     Span       // where in the source it occurred
	Notes    []string   // optional additional help messages
}

// Renderer formats diagnostics as plain text. It never emits color codes,
// so the output can go to any sink.
type Renderer struct {
	filename     string
	contextLines int
	tabWidth     int
}

// New returns a Renderer with one line of leading context and four
// column tabs, adjusted by the options.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		contextLines: 1,
		tabWidth:     4,
	}
	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var defaultRenderer = &Renderer{contextLines: 1, tabWidth: 4}

// PrintDiagnostic renders diag with the default settings.
func PrintDiagnostic(w io.Writer, diag Diagnostic, filename string, src string) error {
	r := *defaultRenderer
	r.filename = filename
	return r.Render(w, diag, src)
}

// Render writes the report for diag to w. The layout is
//
//	error: message
//	 --> file:line:column
//	  |
//	...
//	2 | previous line
//	3 | offending line
//	  |     ^
//	  = note: ...
//
// where "..." stands for lines folded out of the report.
func (r *Renderer) Render(w io.Writer, diag Diagnostic, src string) error {
	_, err := io.WriteString(w, r.String(diag, src))
	return err
}

// String returns the report for diag.
func (r *Renderer) String(diag Diagnostic, src string) string {
	span := diag.Span
	start := clamp(span.Start, len(src))
	end := max(start, clamp(span.End, len(src)))
	lines := linesBefore(src, start, r.contextLines)
	target := lines[len(lines)-1]

	gutter := len(strconv.Itoa(target.number))
	pad := strings.Repeat(" ", gutter)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", strings.ToLower(diag.Severity.String()), diag.Message)
	if r.filename == "" {
		fmt.Fprintf(&sb, "%s--> %d:%d\n", pad, span.Line, span.Column)
	} else {
		fmt.Fprintf(&sb, "%s--> %s:%d:%d\n", pad, r.filename, span.Line, span.Column)
	}
	fmt.Fprintf(&sb, "%s |\n", pad)
	if lines[0].number > 1 {
		sb.WriteString("...\n")
	}
	for _, line := range lines {
		if line.text == "" {
			fmt.Fprintf(&sb, "%*d |\n", gutter, line.number)
			continue
		}
		fmt.Fprintf(&sb, "%*d | %s\n", gutter, line.number, r.expand(line.text))
	}

	// caret underline
	indent := r.width(src[target.start:start])
	carets := 1
	if text := strings.TrimRight(src[start:end], "\r\n"); text != "" {
		carets = max(1, r.width(text))
	}
	fmt.Fprintf(&sb, "%s | %s%s\n", pad, strings.Repeat(" ", indent), strings.Repeat("^", carets))

	for _, note := range diag.Notes {
		fmt.Fprintf(&sb, "%s = note: %s\n", pad, note)
	}
	return sb.String()
}

func (r *Renderer) expand(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", r.tabWidth))
}

// width is the number of terminal columns s occupies once tabs are expanded.
func (r *Renderer) width(s string) int {
	return runewidth.StringWidth(r.expand(s))
}

type sourceLine struct {
	number int    // 1-based
	start  int    // byte offset of the first character
	text   string // without the line terminator
}

// linesBefore returns the line containing offset, preceded by at most
// context lines, in source order.
func linesBefore(src string, offset, context int) []sourceLine {
	pos := Locate(src, offset)
	start := strings.LastIndexByte(src[:pos.Offset], '\n') + 1
	lines := []sourceLine{{number: pos.Line, start: start, text: lineAt(src, start)}}
	for n := pos.Line - 1; n > 0 && len(lines) <= context; n-- {
		// the previous line ends with the LF at start-1
		start = strings.LastIndexByte(src[:start-1], '\n') + 1
		lines = append(lines, sourceLine{number: n, start: start, text: lineAt(src, start)})
	}
	slices.Reverse(lines)
	return lines
}

// lineAt returns the line that begins at start, without its terminator.
func lineAt(src string, start int) string {
	line := src[start:]
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	return strings.TrimSuffix(line, "\r")
}
