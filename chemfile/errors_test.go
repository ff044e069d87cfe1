// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package chemfile_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MolCrafts/molpack/chemfile"
	"github.com/MolCrafts/molpack/diagnostics"
)

var errWidget = chemfile.NewKind("TEST_WIDGET", "test: bad widget")

func TestParseError(t *testing.T) {
	input := "widgets\nsprocket gear\n"
	err := chemfile.NewParseError("test", errWidget, "widget", "<name>", input, 17)

	if got, want := err.Error(), "test: 2:10: invalid widget: expected <name>"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if got, want := err.Span, (diagnostics.Span{Start: 17, End: 18, Line: 2, Column: 10}); got != want {
		t.Fatalf("Span = %+v, want %+v", got, want)
	}
	if !errors.Is(err, errWidget) {
		t.Fatalf("errors.Is(err, errWidget) = false, want true")
	}
	if got, want := err.Input(), input; got != want {
		t.Fatalf("Input() = %q, want %q", got, want)
	}

	wrapped := fmt.Errorf("frame 3: %w", err)
	var pe *chemfile.ParseError
	if !errors.As(wrapped, &pe) {
		t.Fatalf("errors.As(wrapped, *ParseError) = false, want true")
	}
	if got, want := chemfile.ErrorCode(wrapped), "TEST_WIDGET"; got != want {
		t.Fatalf("ErrorCode = %q, want %q", got, want)
	}
	if got, want := chemfile.ErrorCode(errors.New("boom")), chemfile.ErrCodeUnknown; got != want {
		t.Fatalf("ErrorCode(other) = %q, want %q", got, want)
	}
}

func TestParseErrorSnippet(t *testing.T) {
	input := "widgets\nsprocket gear\n"
	err := chemfile.NewParseError("test", errWidget, "widget", "", input, 9, "widgets are lowercase")

	want := "error: invalid widget\n" +
		" --> 2:2\n" +
		"  |\n" +
		"1 | widgets\n" +
		"2 | sprocket gear\n" +
		"  |  ^\n" +
		"  = note: widgets are lowercase\n"
	if got := err.Snippet(); got != want {
		t.Fatalf("Snippet:\n%s\nwant:\n%s", got, want)
	}

	var sb strings.Builder
	if rerr := err.Render(&sb, diagnostics.WithFilename("w.txt"), diagnostics.WithContextLines(0)); rerr != nil {
		t.Fatalf("Render: %v", rerr)
	}
	if got := sb.String(); !strings.Contains(got, " --> w.txt:2:2\n") || !strings.Contains(got, "...\n") {
		t.Fatalf("Render:\n%s\nwant filename locator and folded lines", got)
	}
}
