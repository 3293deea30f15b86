package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

func newTestUCI(t *testing.T, store *storage.AnalysisStore) (*UCI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	eng := engine.NewEngine(engine.Options{HashMB: 1, Threads: 1}, zerolog.Nop())
	return New(eng, store, &out, zerolog.Nop()), &out
}

func run(t *testing.T, u *UCI, script string) {
	t.Helper()
	if err := u.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "bestmove "); ok {
			return rest
		}
	}
	t.Fatalf("no bestmove in output:\n%s", out)
	return ""
}

func TestHandshake(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, "uci\nisready\nquit\nisready\n")

	got := out.String()
	for _, want := range []string{"id name ChessCore", "option name Hash type spin", "option name Threads", "uciok"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "readyok"); n != 1 {
		t.Errorf("readyok printed %d times, commands after quit must be ignored", n)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want string
	}{
		{"startpos", "position startpos", board.StartFEN},
		{"startpos moves", "position startpos moves e2e4 e7e5 g1f3",
			"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"},
		{"fen", "position fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1", "4k3/8/8/8/8/8/8/4K2R w K - 0 1"},
		{"fen moves", "position fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1 moves e1g1",
			"4k3/8/8/8/8/8/8/5RK1 b - - 1 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, _ := newTestUCI(t, nil)
			u.Execute(tc.cmd)
			if got := u.position.FEN(); got != tc.want {
				t.Errorf("FEN = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPositionRejected(t *testing.T) {
	for _, cmd := range []string{
		"position fen 8/8/8 w - - 0 1",
		"position startpos moves e2e5",
		"position startpos moves e2e4 e2e4",
		"position nonsense",
	} {
		t.Run(cmd, func(t *testing.T) {
			u, out := newTestUCI(t, nil)
			u.Execute("position startpos moves d2d4")
			before := u.position.FEN()

			u.Execute(cmd)
			if got := u.position.FEN(); got != before {
				t.Errorf("position changed to %q", got)
			}
			if !strings.Contains(out.String(), "info string") {
				t.Errorf("no diagnostic printed")
			}
		})
	}
}

func TestParseGo(t *testing.T) {
	start := board.NewPosition()
	tests := []struct {
		args string
		want engine.Limits
	}{
		{"", engine.Limits{}},
		{"infinite", engine.Limits{}},
		{"depth 7 nodes 1000", engine.Limits{Depth: 7, Nodes: 1000}},
		{"movetime 500", engine.Limits{Time: 500 * time.Millisecond}},
		{"wtime 60000 btime 1000", engine.Limits{Time: 1020 * time.Millisecond}},
		{"perft 3", engine.Limits{Perft: 3}},
		{"depth", engine.Limits{}},
		{"depth -4", engine.Limits{}},
	}
	for _, tc := range tests {
		t.Run(tc.args, func(t *testing.T) {
			if got := parseGo(strings.Fields(tc.args), start); got != tc.want {
				t.Errorf("parseGo(%q) = %+v, want %+v", tc.args, got, tc.want)
			}
		})
	}
}

func TestGoDepth(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, "position startpos moves e2e4\ngo depth 3\nwait\n")

	got := out.String()
	for d := 1; d <= 3; d++ {
		if !strings.Contains(got, "info depth "+string(rune('0'+d))+" score cp ") {
			t.Errorf("no info line for depth %d in:\n%s", d, got)
		}
	}
	move := bestMove(t, got)
	if _, err := u.position.ParseMove(move); err != nil {
		t.Errorf("bestmove %s is not legal: %v", move, err)
	}
}

func TestGoMate(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo depth 4\nwait\n")

	got := out.String()
	if !strings.Contains(got, "score mate 1") {
		t.Errorf("no mate score in:\n%s", got)
	}
	if move := bestMove(t, got); move != "a1a8" {
		t.Errorf("bestmove = %s, want a1a8", move)
	}
}

func TestGoNoLegalMove(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, "position fen R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1\ngo depth 3\nwait\n")
	if move := bestMove(t, out.String()); move != "0000" {
		t.Errorf("bestmove = %s, want 0000", move)
	}
}

func TestStop(t *testing.T) {
	u, out := newTestUCI(t, nil)
	u.Execute("position startpos")
	u.Execute("go infinite")
	time.Sleep(50 * time.Millisecond)
	u.Execute("stop")

	move := bestMove(t, out.String())
	if _, err := u.position.ParseMove(move); err != nil {
		t.Errorf("bestmove %s is not legal: %v", move, err)
	}
}

func TestRunStopsSearchAtEOF(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, "position startpos\ngo infinite\n")
	bestMove(t, out.String())
}

func TestPerft(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, "position startpos\nperft 3\ngo perft 2\n")

	got := out.String()
	if !strings.Contains(got, "Nodes searched: 8902") {
		t.Errorf("perft 3 total missing in:\n%s", got)
	}
	if !strings.Contains(got, "Nodes searched: 400") {
		t.Errorf("go perft 2 total missing in:\n%s", got)
	}
	if !strings.Contains(got, "e2e4: 600\n") {
		t.Errorf("divide line for e2e4 missing in:\n%s", got)
	}
}

func TestSetOption(t *testing.T) {
	u, out := newTestUCI(t, nil)
	run(t, u, strings.Join([]string{
		"setoption name Hash value 4",
		"setoption name Threads value 3",
		"setoption name Clear Hash",
		"setoption name Hash value lots",
		"setoption name Ponder value true",
	}, "\n"))

	opts := u.engine.Options()
	if opts.HashMB != 4 || opts.Threads != 3 {
		t.Errorf("options = %+v, want Hash 4 Threads 3", opts)
	}
	got := out.String()
	if !strings.Contains(got, "invalid value for hash") || !strings.Contains(got, "unknown option Ponder") {
		t.Errorf("missing diagnostics in:\n%s", got)
	}
}

func TestAnalysisStored(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	u, out := newTestUCI(t, store)
	run(t, u, "position startpos\nanalysis\ngo depth 3\nwait\nanalysis\n")

	got := out.String()
	if !strings.Contains(got, "info string no analysis") {
		t.Errorf("expected a miss before searching:\n%s", got)
	}
	if !strings.Contains(got, "info string analysis depth 3 ") {
		t.Errorf("stored analysis not reported:\n%s", got)
	}

	a, err := store.Load(u.position.Hash)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.Move != bestMove(t, got) || a.FEN != board.StartFEN {
		t.Errorf("stored %+v", a)
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{35, "cp 35"},
		{-120, "cp -120"},
		{engine.MateIn(1), "mate 1"},
		{engine.MateIn(5), "mate 3"},
		{engine.MatedIn(2), "mate -1"},
	}
	for _, tc := range tests {
		if got := formatScore(tc.score); got != tc.want {
			t.Errorf("formatScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestGameStatus(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want string
	}{
		{"threefold", "position startpos moves g1f3 g8f6 f3g1 f6g8 g1f3 g8f6 f3g1 f6g8", "draw by threefold repetition"},
		{"fifty-move", "position fen 4k3/8/8/8/8/8/8/4K2R w - - 100 80", "draw by fifty-move rule"},
		{"checkmate", "position fen R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", "checkmate"},
		{"stalemate", "position fen k7/2Q5/1K6/8/8/8/8/8 b - - 0 1", "stalemate"},
		{"insufficient", "position fen 4k3/8/8/8/8/8/8/4KB2 w - - 0 1", "draw by insufficient material"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, out := newTestUCI(t, nil)
			u.Execute(tc.cmd)
			if got := out.String(); got != "info string "+tc.want+"\n" {
				t.Errorf("after position: %q", got)
			}
			u.Execute("d")
			if got := out.String(); !strings.Contains(got, "Status: "+tc.want+"\n") {
				t.Errorf("d output lacks the status:\n%s", got)
			}
		})
	}

	t.Run("twofold", func(t *testing.T) {
		u, out := newTestUCI(t, nil)
		u.Execute("position startpos moves g1f3 g8f6 f3g1 f6g8")
		u.Execute("d")
		if got := out.String(); strings.Contains(got, "info string") || strings.Contains(got, "Status:") {
			t.Errorf("a single repetition reported as a draw:\n%s", got)
		}
	})
}
