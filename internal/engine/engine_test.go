package engine

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

func TestEngineSearchReportsIterations(t *testing.T) {
	for _, threads := range []int{1, 4} {
		eng := NewEngine(Options{HashMB: 1, Threads: threads}, zerolog.Nop())
		var depths []int
		eng.OnInfo = func(info SearchInfo) {
			depths = append(depths, info.Depth)
			if len(info.PV) == 0 {
				t.Errorf("threads=%d depth %d: empty PV", threads, info.Depth)
			}
		}

		pos := mustParse(t, kiwipeteFEN)
		res := eng.Search(context.Background(), pos, Limits{Depth: 5})

		if !isLegal(pos, res.Move) {
			t.Fatalf("threads=%d: move %s is not legal", threads, res.Move)
		}
		if res.Depth != 5 {
			t.Errorf("threads=%d: depth = %d", threads, res.Depth)
		}
		for i, d := range depths {
			if d != i+1 {
				t.Fatalf("threads=%d: info depths %v", threads, depths)
			}
		}
		if eng.HashFull() == 0 {
			t.Errorf("threads=%d: table untouched after a search", threads)
		}
	}
}

func TestEngineMateWithHelpers(t *testing.T) {
	eng := NewEngine(Options{HashMB: 4, Threads: 3}, zerolog.Nop())
	res := eng.Search(context.Background(), mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"), Limits{Depth: 8})
	if res.Move.String() != "a1a8" || res.Score != MateIn(1) {
		t.Errorf("got %s %d, want a1a8 %d", res.Move, res.Score, MateIn(1))
	}
}

func TestEngineCancel(t *testing.T) {
	eng := NewEngine(Options{HashMB: 4, Threads: 2}, zerolog.Nop())
	pos := board.NewPosition()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() { done <- eng.Search(ctx, pos, Limits{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		if !isLegal(pos, res.Move) {
			t.Errorf("move %s is not legal", res.Move)
		}
	case <-time.After(5 * time.Second):
		eng.Stop()
		t.Fatal("search ignored cancellation")
	}
}

func TestEngineStop(t *testing.T) {
	eng := NewEngine(DefaultOptions(), zerolog.Nop())
	done := make(chan Result, 1)
	go func() { done <- eng.Search(context.Background(), board.NewPosition(), Limits{}) }()

	time.Sleep(50 * time.Millisecond)
	eng.Stop()

	select {
	case res := <-done:
		if res.Move == board.NoMove {
			t.Error("no move after Stop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search ignored Stop")
	}
}

func TestEnginePerft(t *testing.T) {
	eng := NewEngine(DefaultOptions(), zerolog.Nop())
	if res := eng.Search(context.Background(), mustParse(t, kiwipeteFEN), Limits{Perft: 3}); res.Nodes != 97862 {
		t.Errorf("perft(3) = %d, want 97862", res.Nodes)
	}
}

func TestParallelPerftMatchesDivide(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	want := pos.Divide(3)

	for _, procs := range []int{1, 4} {
		t.Run(fmt.Sprintf("procs=%d", procs), func(t *testing.T) {
			defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(procs))

			entries, total := ParallelPerft(pos, 3)
			if len(entries) != len(want) {
				t.Fatalf("%d entries, want %d", len(entries), len(want))
			}
			for i := range want {
				if entries[i] != want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
				}
			}
			if total != 97862 {
				t.Errorf("total = %d, want 97862", total)
			}
			if pos.FEN() != kiwipeteFEN {
				t.Errorf("position changed to %s", pos.FEN())
			}
		})
	}
}

func TestEngineLogsSANLine(t *testing.T) {
	var buf bytes.Buffer
	eng := NewEngine(Options{HashMB: 1, Threads: 1}, zerolog.New(&buf).Level(zerolog.DebugLevel))

	res := eng.Search(context.Background(), mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"), Limits{Depth: 3})
	if res.Move.String() != "a1a8" {
		t.Fatalf("move = %s, want a1a8", res.Move)
	}
	if !strings.Contains(buf.String(), `"pv":["Ra8#"]`) {
		t.Errorf("iteration log lacks the SAN line:\n%s", buf.String())
	}
}

func TestEngineOptions(t *testing.T) {
	eng := NewEngine(Options{HashMB: 0, Threads: -3}, zerolog.Nop())
	if got := eng.Options(); got.HashMB != MinHashMB || got.Threads != MinThreads {
		t.Errorf("options not clamped: %+v", got)
	}

	eng.SetHash(2)
	eng.SetThreads(2)
	if got := eng.Options(); got.HashMB != 2 || got.Threads != 2 {
		t.Errorf("options = %+v", got)
	}

	eng.Search(context.Background(), board.NewPosition(), Limits{Depth: 3})
	eng.Clear()
	if eng.HashFull() != 0 {
		t.Error("Clear left entries behind")
	}
}
