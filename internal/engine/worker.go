package engine

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/hailam/chesscore/internal/board"
)

// nodeType distinguishes the root and principal variation nodes, searched
// with an open window, from zero-window nodes.
type nodeType uint8

const (
	nonPVNode nodeType = iota
	pvNode
	rootNode
)

// limitCheckInterval is how many nodes the main worker visits between
// looking at the clock and the node budget.
const limitCheckInterval = 1024

// Worker represents a search worker for parallel Lazy SMP search.
// Each worker owns its position, history and eval cache and shares the
// transposition table and abort flag.
type Worker struct {
	id   int
	main bool

	// Per-worker position copy
	pos *board.Position

	history   History
	evalCache *EvalCache
	pv        PVTable
	undo      [MaxPly]board.Undo

	nodes atomic.Uint64

	// Shared resources
	tt    *TranspositionTable
	abort *atomic.Bool

	limits Limits
	start  time.Time

	// peers lists every worker of the search, itself included, so the main
	// worker can enforce the node budget across all of them.
	peers []*Worker

	// rootOrder is the shuffled root move list helpers search in place of
	// the picker, so they explore the tree in a different order.
	rootOrder []board.Move

	log zerolog.Logger
}

// NewWorker creates a new search worker.
func NewWorker(id int, tt *TranspositionTable, abort *atomic.Bool, log zerolog.Logger) *Worker {
	return &Worker{
		id:        id,
		main:      id == 0,
		evalCache: NewEvalCache(1),
		tt:        tt,
		abort:     abort,
		log:       log.With().Int("worker", id).Logger(),
	}
}

// Nodes returns the number of nodes searched by this worker.
func (w *Worker) Nodes() uint64 {
	return w.nodes.Load()
}

// prepare sets the worker up for a new search of pos.
func (w *Worker) prepare(pos *board.Position, limits Limits, start time.Time) {
	w.pos = pos.Copy()
	w.limits = limits
	w.start = start
	w.nodes.Store(0)
	w.history.Age()
	w.pv.reset(0)

	w.rootOrder = nil
	if !w.main {
		w.rootOrder = w.pos.LegalMoves()
	}
}

// clear forgets everything learned in earlier searches.
func (w *Worker) clear() {
	w.history.Clear()
	w.evalCache.Clear()
}

// shuffleRoot reorders a helper's root moves for the next iteration, keeping
// the best move found so far in front.
func (w *Worker) shuffleRoot(best board.Move) {
	if w.rootOrder == nil {
		return
	}
	frand.Shuffle(len(w.rootOrder), func(i, j int) {
		w.rootOrder[i], w.rootOrder[j] = w.rootOrder[j], w.rootOrder[i]
	})
	for i, m := range w.rootOrder {
		if m == best {
			w.rootOrder[0], w.rootOrder[i] = w.rootOrder[i], w.rootOrder[0]
			break
		}
	}
}

func (w *Worker) totalNodes() uint64 {
	if w.peers == nil {
		return w.nodes.Load()
	}
	var total uint64
	for _, p := range w.peers {
		total += p.nodes.Load()
	}
	return total
}

// visit counts a node and, on the main worker, periodically enforces limits.
func (w *Worker) visit() {
	if n := w.nodes.Add(1); w.main && n%limitCheckInterval == 0 {
		w.checkLimits()
	}
}

func (w *Worker) checkLimits() {
	if w.limits.Time > 0 && time.Since(w.start) >= w.limits.Time {
		w.abort.Store(true)
	}
	if w.limits.Nodes > 0 && w.totalNodes() >= w.limits.Nodes {
		w.abort.Store(true)
	}
}

// stopped returns true if search should stop.
func (w *Worker) stopped() bool {
	return w.abort.Load()
}

// evaluate returns the static evaluation through the worker's cache.
func (w *Worker) evaluate() int {
	if score, ok := w.evalCache.Probe(w.pos.Hash); ok {
		return score
	}
	score := Evaluate(w.pos)
	w.evalCache.Store(w.pos.Hash, score)
	return score
}

// pvs is the principal variation search. PV and root nodes search the first
// legal move with the full window and the rest with a zero window, widening
// again when a later move beats alpha.
func (w *Worker) pvs(node nodeType, alpha, beta, depth, height int) int {
	if depth <= 0 {
		return w.quiescence(alpha, beta, height)
	}

	w.pv.reset(height)
	w.visit()

	isPV := node != nonPVNode
	root := node == rootNode

	if !root {
		if w.stopped() || w.pos.IsDraw() {
			return Draw
		}
		if height >= MaxPly-1 {
			return w.evaluate()
		}

		// Mate distance pruning
		alpha = max(alpha, MatedIn(height))
		beta = min(beta, MateIn(height+1))
		if alpha >= beta {
			return alpha
		}
	}

	key := w.pos.Hash
	ttMove := board.NoMove
	if entry, found := w.tt.Probe(key); found {
		usable := entry.Move == board.NoMove ||
			(w.pos.PseudoLegal(entry.Move) && w.pos.Legal(entry.Move))
		score := scoreFromTT(entry.Score, height)

		if !isPV && usable && entry.Depth >= depth && entry.Bound.Cutoff(score, alpha, beta) {
			return score
		}
		if usable {
			ttMove = entry.Move
		}
	}

	us := w.pos.SideToMove
	originalAlpha := alpha
	bestScore, bestMove := -Inf, board.NoMove
	legal := 0

	var quiets [64]board.Move
	quietCount := 0

	var mp Picker
	mp.init(w.pos, ttMove, &w.history)
	ordered := root && w.rootOrder != nil

	for {
		var m board.Move
		if ordered {
			if legal == len(w.rootOrder) {
				break
			}
			m = w.rootOrder[legal]
		} else if m = mp.Next(); m == board.NoMove {
			break
		} else if !w.pos.Legal(m) {
			continue
		}
		legal++

		w.undo[height] = w.pos.MakeMove(m)

		var score int
		if !isPV || legal > 1 {
			score = -w.pvs(nonPVNode, -alpha-1, -alpha, depth-1, height+1)
		}
		if isPV && (legal == 1 || score > alpha) {
			score = -w.pvs(pvNode, -beta, -alpha, depth-1, height+1)
		}

		w.pos.UnmakeMove(m, w.undo[height])

		if w.stopped() {
			return Draw
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				bestMove = m
				if isPV {
					w.pv.update(height, m)
				}
				if score >= beta {
					if m.IsQuiet() {
						w.rewardQuiet(us, m, quiets[:quietCount], depth)
					}
					break
				}
				alpha = score
			}
		}

		if m.IsQuiet() && quietCount < len(quiets) {
			quiets[quietCount] = m
			quietCount++
		}
	}

	if legal == 0 {
		if w.pos.InCheck() {
			return MatedIn(height)
		}
		return Draw
	}

	bound := BoundExact
	switch {
	case bestScore >= beta:
		bound = BoundLower
	case alpha == originalAlpha:
		bound = BoundUpper
	}
	w.tt.Store(key, bestMove, bestScore, depth, bound, height)

	return bestScore
}

// rewardQuiet raises the history of a quiet move that caused a cutoff and
// lowers the quiets searched before it.
func (w *Worker) rewardQuiet(us board.Color, best board.Move, tried []board.Move, depth int) {
	bonus := historyBonus(depth)
	w.history.Update(us, best, bonus)
	for _, m := range tried {
		w.history.Update(us, m, -bonus)
	}
}
