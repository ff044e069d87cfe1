// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/MolCrafts/molpack/diagnostics"
)

func TestLocate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		src    string
		offset int
		line   int
		column int
	}{
		{"start", "abc", 0, 1, 1},
		{"same line", "abc", 2, 1, 3},
		{"second line", "ab\ncd", 4, 2, 2},
		{"at LF", "ab\ncd", 2, 1, 3},
		{"CR of CRLF", "ab\r\ncd", 2, 1, 3},
		{"after CRLF", "ab\r\ncd", 4, 2, 1},
		{"end of input", "ab\n", 3, 2, 1},
		{"past end is clamped", "ab", 10, 1, 3},
		{"runes, not bytes", "héllo", 3, 1, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pos := diagnostics.Locate(tc.src, tc.offset)
			if pos.Line != tc.line || pos.Column != tc.column {
				t.Fatalf("Locate(%q, %d) = %d:%d, want %d:%d", tc.src, tc.offset, pos.Line, pos.Column, tc.line, tc.column)
			}
		})
	}
}

func TestSpanAt(t *testing.T) {
	for _, tc := range []struct {
		name       string
		src        string
		offset     int
		start, end int
	}{
		{"ascii", "abc", 1, 1, 2},
		{"multibyte", "héllo", 1, 1, 3},
		{"inside rune", "héllo", 2, 1, 3},
		{"end of input", "abc", 3, 3, 3},
		{"empty input", "", 0, 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			span := diagnostics.SpanAt(tc.src, tc.offset)
			if span.Start != tc.start || span.End != tc.end {
				t.Fatalf("SpanAt(%q, %d) = [%d,%d), want [%d,%d)", tc.src, tc.offset, span.Start, span.End, tc.start, tc.end)
			}
		})
	}
}

func TestRender(t *testing.T) {
	src := "3\nwater\nO 0.0 0.0 0.0\nH 0.0 x 0.0\nH 1.0 0.0 0.0\n"

	for _, tc := range []struct {
		name    string
		offset  int
		message string
		notes   []string
		options []diagnostics.Option
		want    string
	}{
		{
			name:    "default context",
			offset:  28,
			message: "invalid xyz atom",
			want: "error: invalid xyz atom\n" +
				" --> 4:7\n" +
				"  |\n" +
				"...\n" +
				"3 | O 0.0 0.0 0.0\n" +
				"4 | H 0.0 x 0.0\n" +
				"  |       ^\n",
		},
		{
			name:    "filename, notes and no context",
			offset:  28,
			message: "invalid xyz atom",
			notes:   []string{"expected <symbol> <x> <y> <z>"},
			options: []diagnostics.Option{diagnostics.WithFilename("water.xyz"), diagnostics.WithContextLines(0)},
			want: "error: invalid xyz atom\n" +
				" --> water.xyz:4:7\n" +
				"  |\n" +
				"...\n" +
				"4 | H 0.0 x 0.0\n" +
				"  |       ^\n" +
				"  = note: expected <symbol> <x> <y> <z>\n",
		},
		{
			name:    "first line is never folded",
			offset:  0,
			message: "invalid number of atoms",
			options: []diagnostics.Option{diagnostics.WithContextLines(3)},
			want: "error: invalid number of atoms\n" +
				" --> 1:1\n" +
				"  |\n" +
				"1 | 3\n" +
				"  | ^\n",
		},
		{
			name:    "end of input",
			offset:  len(src),
			message: "invalid atoms list",
			want: "error: invalid atoms list\n" +
				" --> 6:1\n" +
				"  |\n" +
				"...\n" +
				"5 | H 1.0 0.0 0.0\n" +
				"6 |\n" +
				"  | ^\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, err := diagnostics.New(tc.options...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			diag := diagnostics.Diagnostic{
				Severity: slog.LevelError,
				Message:  tc.message,
				Span:     diagnostics.SpanAt(src, tc.offset),
				Notes:    tc.notes,
			}
			if got := r.String(diag, src); got != tc.want {
				t.Fatalf("String:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestRenderColumns(t *testing.T) {
	for _, tc := range []struct {
		name   string
		src    string
		offset int
		want   string
	}{
		{
			name:   "wide runes",
			src:    "水 x",
			offset: 4,
			want: "error: bad\n" +
				" --> 1:3\n" +
				"  |\n" +
				"1 | 水 x\n" +
				"  |    ^\n",
		},
		{
			name:   "tabs",
			src:    "C\t1.0\tz",
			offset: 6,
			want: "error: bad\n" +
				" --> 1:7\n" +
				"  |\n" +
				"1 | C    1.0    z\n" +
				"  |             ^\n",
		},
		{
			name:   "line terminator",
			src:    "C 1.0\r\nH",
			offset: 5,
			want: "error: bad\n" +
				" --> 1:6\n" +
				"  |\n" +
				"1 | C 1.0\n" +
				"  |      ^\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			diag := diagnostics.Diagnostic{
				Severity: slog.LevelError,
				Message:  "bad",
				Span:     diagnostics.SpanAt(tc.src, tc.offset),
			}
			var buf bytes.Buffer
			if err := diagnostics.PrintDiagnostic(&buf, diag, "", tc.src); err != nil {
				t.Fatalf("PrintDiagnostic: %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("PrintDiagnostic:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	if _, err := diagnostics.New(diagnostics.WithContextLines(-1)); err == nil {
		t.Fatalf("WithContextLines(-1): want error, got nil")
	}
	if _, err := diagnostics.New(diagnostics.WithTabWidth(0)); err == nil {
		t.Fatalf("WithTabWidth(0): want error, got nil")
	}
}
