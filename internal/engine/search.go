package engine

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

// Limits specifies constraints on the search. Zero values mean no limit.
type Limits struct {
	Depth int           // Maximum depth, capped at MaxDepth
	Nodes uint64        // Maximum nodes across all workers
	Time  time.Duration // Hard time budget for this move
	Perft int           // Run perft to this depth instead of searching
}

// Result is the outcome of a search.
type Result struct {
	Score int          // From the side to move's point of view
	Move  board.Move   // Best move, NoMove only when there is no legal move
	Depth int          // Last completed iteration
	Nodes uint64       // Nodes visited, or perft leaf count
	PV    []board.Move // Principal variation of the last completed iteration
}

// Go searches pos on the calling goroutine with a single worker. Setting
// abort from another goroutine stops the search; a nil abort means the
// search stops only at its limits.
func Go(pos *board.Position, limits Limits, tt *TranspositionTable, abort *atomic.Bool) Result {
	if limits.Perft > 0 {
		return Result{Depth: limits.Perft, Nodes: pos.Copy().Perft(limits.Perft)}
	}
	if abort == nil {
		abort = new(atomic.Bool)
	}

	w := NewWorker(0, tt, abort, zerolog.Nop())
	w.prepare(pos, limits, time.Now())
	return w.iterate(nil)
}

// iterate runs iterative deepening until the depth limit, a forced mate or
// an abort. An iteration cut short by an abort is discarded. When not even
// depth 1 completed, the first legal move is returned with score -Inf.
func (w *Worker) iterate(report func(Result)) Result {
	maxDepth := MaxDepth
	if w.limits.Depth > 0 {
		maxDepth = min(w.limits.Depth, MaxDepth)
	}

	result := Result{Score: -Inf}

	for depth := 1; depth <= maxDepth; depth++ {
		w.shuffleRoot(result.Move)

		score := w.pvs(rootNode, -Inf, Inf, depth, 0)
		if w.stopped() {
			break
		}

		result = Result{
			Score: score,
			Depth: depth,
			Nodes: w.totalNodes(),
			PV:    w.pv.Line(),
		}
		if len(result.PV) > 0 {
			result.Move = result.PV[0]
		}

		w.log.Trace().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", result.Nodes).
			Msg("iteration complete")

		if report != nil {
			report(result)
		}

		// Nothing left to find: mate is forced or there is no move at all
		if IsMate(score) || result.Move == board.NoMove {
			break
		}

		// Another iteration would likely take longer than what is left
		if w.main && w.limits.Time > 0 && time.Since(w.start)*2 > w.limits.Time {
			break
		}
	}

	result.Nodes = w.totalNodes()
	if result.Depth == 0 {
		result.Score = -Inf
		result.Move = w.firstLegal()
		result.PV = nil
	}
	return result
}

// firstLegal returns the first legal move in picker order.
func (w *Worker) firstLegal() board.Move {
	var mp Picker
	mp.init(w.pos, board.NoMove, nil)
	for m := mp.Next(); m != board.NoMove; m = mp.Next() {
		if w.pos.Legal(m) {
			return m
		}
	}
	return board.NoMove
}
