package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// ParallelPerft splits perft at the root, counting each root move's subtree
// on its own copy of the position. Entries come back in generation order.
// With a single CPU it runs the plain sequential divide.
func ParallelPerft(pos *board.Position, depth int) ([]board.DivideEntry, uint64) {
	if depth <= 0 {
		return nil, 1
	}
	if runtime.GOMAXPROCS(0) == 1 {
		entries := pos.Copy().Divide(depth)
		return entries, sumNodes(entries)
	}

	moves := pos.LegalMoves()
	entries := make([]board.DivideEntry, len(moves))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range moves {
		g.Go(func() error {
			cp := pos.Copy()
			cp.MakeMove(m)
			entries[i] = board.DivideEntry{Move: m, Nodes: cp.Perft(depth - 1)}
			return nil
		})
	}
	_ = g.Wait()

	return entries, sumNodes(entries)
}

func sumNodes(entries []board.DivideEntry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Nodes
	}
	return total
}
