package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// orderValue ranks piece types for capture ordering, pawn lowest.
var orderValue = [6]int32{1, 2, 3, 4, 5, 6}

// captureScore orders captures most valuable victim first, least valuable
// attacker second. Promotions add the promoted piece as a second victim.
func captureScore(pos *board.Position, m board.Move) int32 {
	attacker := pos.PieceAt(m.From()).Type()

	var score int32
	switch {
	case m.IsEnPassant():
		score = 100 * orderValue[board.Pawn]
	case m.IsCapture():
		score = 100 * orderValue[pos.PieceAt(m.To()).Type()]
	}
	if m.IsPromotion() {
		score += 100 * orderValue[m.Promotion()]
	}
	return score - orderValue[attacker]
}

// historyMax bounds butterfly history scores.
const historyMax = 16384

// History is the butterfly table of quiet-move cutoff statistics, indexed by
// side and the move's from/to squares.
type History struct {
	table [2][64 * 64]int16
}

func historyIndex(m board.Move) int {
	return int(m.From())*64 + int(m.To())
}

// Get returns the score of a quiet move for color c.
func (h *History) Get(c board.Color, m board.Move) int {
	return int(h.table[c][historyIndex(m)])
}

// Update applies bonus with gravity, pulling large scores toward zero so the
// table stays within ±historyMax.
func (h *History) Update(c board.Color, m board.Move, bonus int) {
	bonus = clamp(bonus, -historyMax, historyMax)
	entry := &h.table[c][historyIndex(m)]
	v := int(*entry)
	v += bonus - v*absolute(bonus)/historyMax
	*entry = int16(v)
}

// Age halves every score so a new search favours fresh statistics.
func (h *History) Age() {
	for c := range h.table {
		for i := range h.table[c] {
			h.table[c][i] /= 2
		}
	}
}

// Clear resets the table.
func (h *History) Clear() {
	h.table = [2][64 * 64]int16{}
}

// historyBonus is the reward for a cutoff at depth.
func historyBonus(depth int) int {
	return min(depth*depth, historyMax)
}
