package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func drain(mp *Picker) []board.Move {
	var moves []board.Move
	for m := mp.Next(); m != board.NoMove; m = mp.Next() {
		moves = append(moves, m)
	}
	return moves
}

func TestPickerYieldsEveryMoveOnce(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	var all board.MoveList
	pos.GenerateMoves(&all, board.GenAll)

	tt := board.NewMove(board.E1, board.G1, board.FlagKingCastle)
	var h History
	var mp Picker
	mp.init(pos, tt, &h)
	got := drain(&mp)

	if got[0] != tt {
		t.Errorf("first move = %s, want the TT move %s", got[0], tt)
	}
	if len(got) != all.Len() {
		t.Fatalf("picker yielded %d moves, generator %d", len(got), all.Len())
	}
	generated := map[board.Move]bool{}
	for _, m := range all.Slice() {
		generated[m] = true
	}
	seen := map[board.Move]bool{}
	for _, m := range got {
		if seen[m] {
			t.Errorf("%s yielded twice", m)
		}
		seen[m] = true
		if !generated[m] {
			t.Errorf("%s was never generated", m)
		}
	}
}

func TestPickerOrdersCapturesFirst(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	var mp Picker
	mp.init(pos, board.NoMove, nil)
	got := drain(&mp)

	inQuiets := false
	last := int32(1 << 30)
	for _, m := range got {
		if !m.IsCapture() {
			inQuiets = true
			continue
		}
		if inQuiets {
			t.Fatalf("capture %s after a quiet move", m)
		}
		score := captureScore(pos, m)
		if score > last {
			t.Errorf("%s scored %d after a move scored %d", m, score, last)
		}
		last = score
	}
}

func TestPickerSkipQuiets(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	var mp Picker
	mp.init(pos, board.NoMove, nil)
	mp.skipQuiets = true
	for _, m := range drain(&mp) {
		if !m.IsCapture() && !m.IsPromotion() {
			t.Errorf("quiet move %s with quiets skipped", m)
		}
	}
}

func TestPickerUsesHistory(t *testing.T) {
	pos := board.NewPosition()
	favourite := board.NewMove(board.H2, board.H3, board.FlagQuiet)
	var h History
	h.Update(board.White, favourite, 400)

	var mp Picker
	mp.init(pos, board.NoMove, &h)
	if got := drain(&mp); got[0] != favourite {
		t.Errorf("first quiet = %s, want %s", got[0], favourite)
	}
}

func TestCaptureScoreMVVLVA(t *testing.T) {
	// Pawn and queen can both take the rook on d5; the knight on e7 too.
	pos := mustParse(t, "4k3/4n3/8/3r4/4P3/8/8/3QK3 w - - 0 1")
	pxr := board.NewMove(board.E4, board.D5, board.FlagCapture)
	qxr := board.NewMove(board.D1, board.D5, board.FlagCapture)
	if captureScore(pos, pxr) <= captureScore(pos, qxr) {
		t.Errorf("PxR %d should outrank QxR %d", captureScore(pos, pxr), captureScore(pos, qxr))
	}
}

func TestHistoryGravity(t *testing.T) {
	var h History
	m := board.NewMove(board.G1, board.F3, board.FlagQuiet)
	for i := 0; i < 1000; i++ {
		h.Update(board.White, m, 5000)
	}
	if got := h.Get(board.White, m); got > historyMax || got < historyMax/2 {
		t.Errorf("saturated history = %d, want close to %d", got, historyMax)
	}
	if h.Get(board.Black, m) != 0 {
		t.Error("history leaked across colors")
	}

	for i := 0; i < 1000; i++ {
		h.Update(board.White, m, -historyMax*4)
	}
	if got := h.Get(board.White, m); got < -historyMax {
		t.Errorf("history = %d below -%d", got, historyMax)
	}

	before := h.Get(board.White, m)
	h.Age()
	if got := h.Get(board.White, m); got != before/2 {
		t.Errorf("aged history = %d, want %d", got, before/2)
	}
	h.Clear()
	if h.Get(board.White, m) != 0 {
		t.Error("Clear left history behind")
	}
}
