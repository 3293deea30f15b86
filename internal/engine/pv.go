package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// PVTable stores the principal variation as a triangular table: row h holds
// the best line found from height h.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// reset empties the line at height.
func (pv *PVTable) reset(height int) {
	pv.length[height] = height
}

// update makes m followed by the child's line the line at height.
func (pv *PVTable) update(height int, m board.Move) {
	pv.moves[height][height] = m
	n := max(pv.length[height+1], height+1)
	copy(pv.moves[height][height+1:n], pv.moves[height+1][height+1:n])
	pv.length[height] = n
}

// Line returns a copy of the root line.
func (pv *PVTable) Line() []board.Move {
	return append([]board.Move(nil), pv.moves[0][:pv.length[0]]...)
}
