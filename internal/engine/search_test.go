package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

const kiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustParse(t testing.TB, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func isLegal(pos *board.Position, m board.Move) bool {
	for _, legal := range pos.LegalMoves() {
		if legal == m {
			return true
		}
	}
	return false
}

func TestGoReturnsLegalMove(t *testing.T) {
	for _, fen := range []string{board.StartFEN, kiwipeteFEN} {
		t.Run(fen, func(t *testing.T) {
			pos := mustParse(t, fen)
			res := Go(pos, Limits{Depth: 4}, NewTranspositionTable(4), nil)

			if !isLegal(pos, res.Move) {
				t.Fatalf("move %s is not legal", res.Move)
			}
			if res.Depth != 4 {
				t.Errorf("depth = %d, want 4", res.Depth)
			}
			if res.Score <= -Inf || res.Score >= Inf {
				t.Errorf("score %d outside (-Inf, Inf)", res.Score)
			}
			if len(res.PV) == 0 || res.PV[0] != res.Move {
				t.Errorf("PV %v does not start with %s", res.PV, res.Move)
			}
			if res.Nodes == 0 {
				t.Error("no nodes counted")
			}
			if pos.FEN() != fen {
				t.Errorf("search modified the position: %s", pos.FEN())
			}
		})
	}
}

func TestGoFindsMate(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		move  string
		score int
	}{
		{"back rank mate in one", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", MateIn(1)},
		{"king and rook mate in two", "k7/8/2K5/8/8/8/8/7R w - - 0 1", "", MateIn(3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			res := Go(pos, Limits{Depth: 6}, NewTranspositionTable(4), nil)
			if res.Score != tc.score {
				t.Errorf("score = %d, want %d", res.Score, tc.score)
			}
			if tc.move != "" && res.Move.String() != tc.move {
				t.Errorf("move = %s, want %s", res.Move, tc.move)
			}
			if !isLegal(pos, res.Move) {
				t.Errorf("move %s is not legal", res.Move)
			}
		})
	}
}

func TestGoWithoutLegalMoves(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		score int
	}{
		{"checkmated", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", MatedIn(0)},
		{"stalemated", "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1", Draw},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Go(mustParse(t, tc.fen), Limits{Depth: 3}, NewTranspositionTable(1), nil)
			if res.Move != board.NoMove {
				t.Errorf("move = %s, want none", res.Move)
			}
			if res.Score != tc.score {
				t.Errorf("score = %d, want %d", res.Score, tc.score)
			}
			if res.Depth != 1 || res.Score == -Inf {
				t.Errorf("depth %d score %d: a finished search must not look like an aborted one", res.Depth, res.Score)
			}
		})
	}
}

func TestGoAbortedFallsBackToFirstLegal(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	var abort atomic.Bool
	abort.Store(true)

	res := Go(pos, Limits{Depth: 5}, NewTranspositionTable(1), &abort)
	if res.Depth != 0 {
		t.Errorf("depth = %d, want 0", res.Depth)
	}
	if res.Score != -Inf {
		t.Errorf("score = %d, want -Inf", res.Score)
	}
	if !isLegal(pos, res.Move) {
		t.Errorf("fallback %s is not legal", res.Move)
	}
}

func TestGoNodeLimit(t *testing.T) {
	pos := board.NewPosition()
	const limit = 20000
	res := Go(pos, Limits{Nodes: limit}, NewTranspositionTable(4), nil)
	if res.Nodes < limit || res.Nodes > limit+limitCheckInterval*8 {
		t.Errorf("nodes = %d, limit %d", res.Nodes, limit)
	}
	if !isLegal(pos, res.Move) {
		t.Errorf("move %s is not legal", res.Move)
	}
}

func TestGoTimeLimit(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	start := time.Now()
	res := Go(pos, Limits{Time: 100 * time.Millisecond}, NewTranspositionTable(4), nil)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("search took %v with a 100ms budget", elapsed)
	}
	if !isLegal(pos, res.Move) {
		t.Errorf("move %s is not legal", res.Move)
	}
}

func TestGoPerft(t *testing.T) {
	res := Go(board.NewPosition(), Limits{Perft: 3}, NewTranspositionTable(1), nil)
	if res.Nodes != 8902 {
		t.Errorf("perft(3) = %d, want 8902", res.Nodes)
	}
}

func TestQuiescenceNotBelowStandPat(t *testing.T) {
	fens := []string{
		board.StartFEN,
		kiwipeteFEN,
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	}
	for _, fen := range fens {
		pos := mustParse(t, fen)
		w := NewWorker(0, NewTranspositionTable(1), new(atomic.Bool), zerolog.Nop())
		w.prepare(pos, Limits{}, time.Now())
		if got, stand := w.quiescence(-Inf, Inf, 0), Evaluate(pos); got < stand {
			t.Errorf("%s: quiescence %d below stand pat %d", fen, got, stand)
		}
	}
}

func TestQuiescenceWinsHangingQueen(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	w := NewWorker(0, NewTranspositionTable(1), new(atomic.Bool), zerolog.Nop())
	w.prepare(pos, Limits{}, time.Now())
	got, stand := w.quiescence(-Inf, Inf, 0), Evaluate(pos)
	if got <= 0 || got-stand < 500 {
		t.Errorf("quiescence = %d from stand pat %d, expected exd5 to be found", got, stand)
	}
}

func TestRepetitionScoresAsDraw(t *testing.T) {
	pos := board.NewPosition()
	for _, s := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		m, err := pos.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		pos.MakeMove(m)
	}

	w := NewWorker(0, NewTranspositionTable(1), new(atomic.Bool), zerolog.Nop())
	w.prepare(pos, Limits{}, time.Now())
	if got := w.pvs(pvNode, -Inf, Inf, 3, 1); got != Draw {
		t.Errorf("repeated position below the root scored %d", got)
	}

	// The root itself is always searched.
	if res := Go(pos, Limits{Depth: 2}, NewTranspositionTable(1), nil); res.Move == board.NoMove {
		t.Error("no move returned from a repeated root")
	}
}

func TestPVLineIsPlayable(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	res := Go(pos, Limits{Depth: 5}, NewTranspositionTable(8), nil)

	cp := pos.Copy()
	for i, m := range res.PV {
		if !isLegal(cp, m) {
			t.Fatalf("PV move %d (%s) is illegal in %s", i, m, cp.FEN())
		}
		cp.MakeMove(m)
	}
}

func TestMateScoresInsideBounds(t *testing.T) {
	for ply := 0; ply < MaxPly; ply++ {
		if MateIn(ply) >= Inf || MatedIn(ply) <= -Inf {
			t.Fatalf("mate at ply %d reaches the search bound", ply)
		}
		if !IsMate(MateIn(ply)) || !IsMate(MatedIn(ply)) {
			t.Fatalf("mate at ply %d not recognised", ply)
		}
	}
	if got := MateMoves(MatedIn(0)); got != 0 {
		t.Errorf("MateMoves(MatedIn(0)) = %d, want 0", got)
	}
}
