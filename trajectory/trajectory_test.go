// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package trajectory_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/MolCrafts/molpack/chemfile"
	"github.com/MolCrafts/molpack/chemfile/xyz"
	"github.com/MolCrafts/molpack/trajectory"
	"github.com/spf13/afero"
)

func TestLoad_Water(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	traj, err := trajectory.Load(ctx, "testdata/water.xyz", trajectory.WithLogger(logger))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := traj.Name, "water.xyz"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if got, want := traj.Len(), 3; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	for i, frame := range traj.Frames {
		if got, want := frame.Len(), 3; got != want {
			t.Fatalf("Frames[%d].Len() = %d, want %d", i, got, want)
		}
	}
	if got, want := traj.Frames[2].Title, "water frame 3"; got != want {
		t.Fatalf("Frames[2].Title = %q, want %q", got, want)
	}
	if got, want := traj.Frames[2].Atoms[1], xyz.NewAtom("H", 0, 0.763, -0.471); got != want {
		t.Fatalf("Frames[2].Atoms[1] = %+v, want %+v", got, want)
	}
	if got := strings.Count(logs.String(), "trajectory: frame"); got != 3 {
		t.Fatalf("logged %d frames, want 3:\n%s", got, logs.String())
	}
}

func TestLoad_BadFrame(t *testing.T) {
	_, err := trajectory.Load(context.Background(), "testdata/water-bad.xyz")
	var fe *trajectory.FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("Load: err = %v, want *FrameError", err)
	}
	if got, want := fe.Index, 1; got != want {
		t.Fatalf("Index = %d, want %d", got, want)
	}
	if !errors.Is(err, xyz.ErrAtomFormat) {
		t.Fatalf("Load: err = %v, want %v", err, xyz.ErrAtomFormat)
	}
	var pe *chemfile.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load: err = %v, want *chemfile.ParseError", err)
	}
	if got, want := pe.Position().Line, 9; got != want {
		t.Fatalf("Line = %d, want %d", got, want)
	}
}

func TestRead(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		frames int
	}{
		{"empty", "", 0},
		{"blank", "\n  \n", 0},
		{"no final line break", "1\na\nC 0 0 0\n1\nb\nH 0 0 0", 2},
		{"trailing blank lines", "1\na\nC 0 0 0\n1\nb\nH 0 0 0\n\n\n", 2},
		{"CRLF", "1\r\na\r\nC 0 0 0  \r\n1\r\nb\r\nH 0 0 0\r\n", 2},
		{"frames without atoms", "0\nempty\n1\nb\nH 0 0 0\n0\nlast\n", 3},
		{"blank line after frame without atoms", "0\nempty\n\n1\nb\nH 0 0 0\n", 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			traj, err := trajectory.Read(context.Background(), tc.name, tc.input)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got := traj.Len(); got != tc.frames {
				t.Fatalf("Len() = %d, want %d", got, tc.frames)
			}
		})
	}
}

func TestRead_Errors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		kind   error
		index  int
		offset int
	}{
		{"content after last atom", "1\na\nC 0 0 0 x\n1\nb\nH 0 0 0", xyz.ErrTrailingContent, 0, 0},
		{"truncated second frame", "1\na\nC 0 0 0\n2\nb\nH 0 0 0", xyz.ErrAtomListTruncated, 1, 12},
		{"blank line between frames", "1\na\nC 0 0 0\n\n1\nb\nH 0 0 0", xyz.ErrHeader, 1, 12},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := trajectory.Read(context.Background(), tc.name, tc.input)
			var fe *trajectory.FrameError
			if !errors.As(err, &fe) {
				t.Fatalf("Read: err = %v, want *FrameError", err)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("Read: err = %v, want %v", err, tc.kind)
			}
			if fe.Index != tc.index || fe.Offset != tc.offset {
				t.Fatalf("FrameError = frame %d at %d, want frame %d at %d", fe.Index, fe.Offset, tc.index, tc.offset)
			}
		})
	}
}

func TestRead_MaxFrames(t *testing.T) {
	input := "1\na\nC 0 0 0\n1\nb\nC 0 0 0\n1\nc\nC 0 0 0\n"
	if _, err := trajectory.Read(context.Background(), "max", input, trajectory.WithMaxFrames(3)); err != nil {
		t.Fatalf("Read(max 3): %v", err)
	}
	_, err := trajectory.Read(context.Background(), "max", input, trajectory.WithMaxFrames(2))
	if !errors.Is(err, trajectory.ErrTooManyFrames) {
		t.Fatalf("Read(max 2): err = %v, want %v", err, trajectory.ErrTooManyFrames)
	}
	if _, err := trajectory.New(trajectory.WithMaxFrames(-1)); err == nil {
		t.Fatalf("WithMaxFrames(-1): want error, got nil")
	}
}

func TestRead_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := trajectory.Read(ctx, "canceled", "1\na\nC 0 0 0\n")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Read: err = %v, want %v", err, context.Canceled)
	}
}

func TestLoad_MemFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/data/argon.xyz", []byte("1\nargon\nAr 0 0 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := afero.WriteFile(fs, "/data/latin1.xyz", []byte("1\nna\xefve\nAr 0 0 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := trajectory.New(trajectory.WithFS(fs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	traj, err := r.Load(context.Background(), "/data/argon.xyz")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := traj.Frames[0].Atoms[0].Symbol, "Ar"; traj.Len() != 1 || got != want {
		t.Fatalf("Load = %d frames, symbol %q, want 1 frame, symbol %q", traj.Len(), got, want)
	}

	var re *trajectory.ReadError
	_, err = r.Load(context.Background(), "/data/latin1.xyz")
	if !errors.As(err, &re) || re.Op != "decode" || !errors.Is(err, trajectory.ErrNotUTF8) {
		t.Fatalf("Load(latin1): err = %v, want decode %v", err, trajectory.ErrNotUTF8)
	}
	_, err = r.Load(context.Background(), "/data/missing.xyz")
	if !errors.As(err, &re) || re.Op != "read" || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load(missing): err = %v, want read %v", err, os.ErrNotExist)
	}
}

func TestWriteTo_RoundTrip(t *testing.T) {
	want := &trajectory.Trajectory{
		Name: "roundtrip",
		Frames: []*xyz.Record{
			xyz.New("first").Add(xyz.NewAtom("O", 0, 0, 0.1173), xyz.NewAtom("H", 0, 0.7572, -0.4692)),
			xyz.New("empty"),
			xyz.New("last").Add(xyz.NewAtom("C", 1e-9, -2.5e10, 3)),
		},
	}
	var buf bytes.Buffer
	if _, err := want.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := trajectory.Read(context.Background(), "roundtrip", buf.String())
	if err != nil {
		t.Fatalf("Read(%q): %v", buf.String(), err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), want.Len())
	}
	for i := range want.Frames {
		if got.Frames[i].Title != want.Frames[i].Title || got.Frames[i].Len() != want.Frames[i].Len() {
			t.Fatalf("Frames[%d] = %q/%d, want %q/%d", i, got.Frames[i].Title, got.Frames[i].Len(), want.Frames[i].Title, want.Frames[i].Len())
		}
		for j := range want.Frames[i].Atoms {
			if got.Frames[i].Atoms[j] != want.Frames[i].Atoms[j] {
				t.Fatalf("Frames[%d].Atoms[%d] = %+v, want %+v", i, j, got.Frames[i].Atoms[j], want.Frames[i].Atoms[j])
			}
		}
	}
}

func TestDecode(t *testing.T) {
	r, err := trajectory.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	traj, err := r.Decode(context.Background(), "/data/neon.xyz", []byte("1\nneon\nNe 0 0 0\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := traj.Name, "neon.xyz"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	_, err = r.Decode(context.Background(), "/data/bad.xyz", []byte{'1', '\n', 0xff, '\n'})
	if !errors.Is(err, trajectory.ErrNotUTF8) {
		t.Fatalf("Decode: err = %v, want %v", err, trajectory.ErrNotUTF8)
	}
}
