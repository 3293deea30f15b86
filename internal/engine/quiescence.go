package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// quiescence searches captures until the position is quiet, so the static
// evaluation is never taken in the middle of an exchange. In check every
// evasion is searched and there is no stand pat.
func (w *Worker) quiescence(alpha, beta, height int) int {
	w.pv.reset(height)
	w.visit()

	if w.stopped() || w.pos.IsDraw() {
		return Draw
	}
	if height >= MaxPly-1 {
		return w.evaluate()
	}

	inCheck := w.pos.InCheck()

	bestScore := -Inf
	if !inCheck {
		// Stand pat
		bestScore = w.evaluate()
		if bestScore >= beta {
			return bestScore
		}
		alpha = max(alpha, bestScore)
	}

	var mp Picker
	mp.init(w.pos, board.NoMove, &w.history)
	mp.skipQuiets = !inCheck

	legal := 0
	for m := mp.Next(); m != board.NoMove; m = mp.Next() {
		if !w.pos.Legal(m) {
			continue
		}
		legal++

		w.undo[height] = w.pos.MakeMove(m)
		score := -w.quiescence(-beta, -alpha, height+1)
		w.pos.UnmakeMove(m, w.undo[height])

		if score > bestScore {
			bestScore = score
			if score > alpha {
				if score >= beta {
					break
				}
				alpha = score
			}
		}
	}

	if legal == 0 && inCheck {
		return MatedIn(height)
	}
	return bestScore
}
