package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

type stage uint8

const (
	stageTTMove stage = iota
	stageGenCaptures
	stageCaptures
	stageGenQuiets
	stageQuiets
	stageDone
)

// Picker yields pseudo-legal moves in stages: the transposition table move,
// then captures by MVV-LVA, then quiets by history. Each stage is generated
// only when the previous one is exhausted, and selection is partial so a
// cutoff skips sorting the rest. Callers still filter with Position.Legal.
type Picker struct {
	pos     *board.Position
	history *History
	ttMove  board.Move
	moves   board.MoveList
	index   int
	stage   stage

	// skipQuiets stops after the captures.
	skipQuiets bool
}

// init resets the picker in place; the move list is too large to copy around.
func (mp *Picker) init(pos *board.Position, ttMove board.Move, history *History) {
	mp.pos = pos
	mp.history = history
	mp.ttMove = ttMove
	mp.moves.Clear()
	mp.index = 0
	mp.stage = stageTTMove
	mp.skipQuiets = false
}

// Next returns the next move, or NoMove when all stages are exhausted.
func (mp *Picker) Next() board.Move {
	for {
		switch mp.stage {
		case stageTTMove:
			mp.stage = stageGenCaptures
			if mp.ttMove != board.NoMove {
				return mp.ttMove
			}

		case stageGenCaptures:
			mp.pos.GenerateMoves(&mp.moves, board.GenCaptures)
			for i := mp.index; i < mp.moves.Len(); i++ {
				mp.moves.SetScore(i, captureScore(mp.pos, mp.moves.Get(i)))
			}
			mp.stage = stageCaptures

		case stageCaptures:
			if m, ok := mp.pick(); ok {
				return m
			}
			mp.stage = stageGenQuiets

		case stageGenQuiets:
			if mp.skipQuiets {
				mp.stage = stageDone
				continue
			}
			mp.pos.GenerateMoves(&mp.moves, board.GenQuiets)
			if mp.history != nil {
				us := mp.pos.SideToMove
				for i := mp.index; i < mp.moves.Len(); i++ {
					mp.moves.SetScore(i, int32(mp.history.Get(us, mp.moves.Get(i))))
				}
			}
			mp.stage = stageQuiets

		case stageQuiets:
			if m, ok := mp.pick(); ok {
				return m
			}
			mp.stage = stageDone

		default:
			return board.NoMove
		}
	}
}

// pick selects the best remaining move of the current stage, skipping the TT
// move already tried.
func (mp *Picker) pick() (board.Move, bool) {
	for mp.index < mp.moves.Len() {
		m := mp.moves.PickBest(mp.index)
		mp.index++
		if m != mp.ttMove {
			return m, true
		}
	}
	return board.NoMove, false
}
