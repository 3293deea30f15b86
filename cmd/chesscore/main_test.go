package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestRunPerft(t *testing.T) {
	var out bytes.Buffer
	if err := runPerft(&out, board.StartFEN, 3); err != nil {
		t.Fatalf("runPerft: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "\nNodes: 8902\n") || !strings.Contains(got, "e2e4: 600\n") {
		t.Errorf("unexpected output:\n%s", got)
	}

	err := runPerft(&out, "8/8/8 w - - 0 1", 3)
	var fenErr *board.FENError
	if !errors.As(err, &fenErr) {
		t.Errorf("bad FEN error = %v, want a *board.FENError", err)
	}
}

func TestRunFlushesProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.prof")
	setFlag(t, cpuprofile, path)
	setFlag(t, perft, 2)

	if err := run(zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("profile missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("profile was not flushed")
	}
}

func TestRunReportsProfileError(t *testing.T) {
	setFlag(t, cpuprofile, filepath.Join(t.TempDir(), "missing", "cpu.prof"))
	setFlag(t, perft, 1)

	if err := run(zerolog.Nop()); err == nil {
		t.Fatal("run succeeded with an unwritable profile path")
	}
}
