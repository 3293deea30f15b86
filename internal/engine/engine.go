package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// Option bounds.
const (
	MinHashMB  = 1
	MaxHashMB  = 1 << 16
	MinThreads = 1
	MaxThreads = 256
)

// Options configures an Engine.
type Options struct {
	HashMB  int // Transposition table size in megabytes
	Threads int // Search workers, the main one included
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{HashMB: 16, Threads: 1}
}

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	NPS      uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// Engine runs lazy SMP searches: one main worker that owns the limits and
// any number of helpers sharing its transposition table.
type Engine struct {
	mu      sync.Mutex // serializes searches and reconfiguration
	opts    Options
	tt      *TranspositionTable
	workers []*Worker
	abort   atomic.Bool
	log     zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine. Logging goes to log; pass zerolog.Nop() to
// silence it.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	opts.HashMB = clamp(opts.HashMB, MinHashMB, MaxHashMB)
	opts.Threads = clamp(opts.Threads, MinThreads, MaxThreads)

	e := &Engine{
		opts: opts,
		tt:   NewTranspositionTable(opts.HashMB),
		log:  log,
	}
	e.spawn(opts.Threads)
	return e
}

func (e *Engine) spawn(n int) {
	e.workers = make([]*Worker, n)
	for i := range e.workers {
		e.workers[i] = NewWorker(i, e.tt, &e.abort, e.log)
	}
	if n > 1 {
		e.workers[0].peers = e.workers
	}
}

// Options returns the current configuration.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetHash resizes the transposition table, discarding its contents.
func (e *Engine) SetHash(mb int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.HashMB = clamp(mb, MinHashMB, MaxHashMB)
	e.tt.Resize(e.opts.HashMB)
	e.log.Debug().Int("mb", e.opts.HashMB).Int("entries", e.tt.Size()).Msg("hash resized")
}

// SetThreads changes the number of search workers.
func (e *Engine) SetThreads(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Threads = clamp(n, MinThreads, MaxThreads)
	e.spawn(e.opts.Threads)
	e.log.Debug().Int("threads", e.opts.Threads).Msg("workers spawned")
}

// Clear clears the transposition table and every worker's history.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
	for _, w := range e.workers {
		w.clear()
	}
}

// Stop stops the current search. Search still returns its best result.
func (e *Engine) Stop() {
	e.abort.Store(true)
}

// HashFull returns the permille of the transposition table in use.
func (e *Engine) HashFull() int {
	return e.tt.HashFull()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// Search finds the best move for pos within limits. Cancelling ctx stops the
// search like Stop does. A perft limit runs a parallel perft instead and
// reports its leaf count in Result.Nodes.
func (e *Engine) Search(ctx context.Context, pos *board.Position, limits Limits) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	if limits.Perft > 0 {
		_, nodes := ParallelPerft(pos, limits.Perft)
		elapsed := time.Since(start)
		e.log.Debug().Int("depth", limits.Perft).Uint64("nodes", nodes).
			Uint64("nps", nps(nodes, elapsed)).Dur("time", elapsed).Msg("perft")
		return Result{Depth: limits.Perft, Nodes: nodes}
	}

	e.abort.Store(false)
	stop := context.AfterFunc(ctx, e.Stop)
	defer stop()

	for _, w := range e.workers {
		w.prepare(pos, limits, start)
	}

	main := e.workers[0]

	var g errgroup.Group
	for _, helper := range e.workers[1:] {
		g.Go(func() error {
			r := helper.iterate(nil)
			helper.log.Trace().Int("depth", r.Depth).Uint64("nodes", helper.Nodes()).Msg("helper done")
			return nil
		})
	}

	result := main.iterate(func(r Result) { e.report(main.pos, r, start) })

	// Helpers run until told to stop
	e.abort.Store(true)
	_ = g.Wait()

	result.Nodes = main.totalNodes()
	e.log.Debug().
		Str("move", result.Move.String()).
		Int("score", result.Score).
		Int("depth", result.Depth).
		Uint64("nodes", result.Nodes).
		Dur("time", time.Since(start)).
		Msg("search done")
	return result
}

// report publishes a completed iteration. root must be the position the
// iteration was searched from.
func (e *Engine) report(root *board.Position, r Result, start time.Time) {
	elapsed := time.Since(start)
	info := SearchInfo{
		Depth:    r.Depth,
		Score:    r.Score,
		Nodes:    r.Nodes,
		NPS:      nps(r.Nodes, elapsed),
		Time:     elapsed,
		PV:       r.PV,
		HashFull: e.tt.HashFull(),
	}

	if ev := e.log.Debug(); ev.Enabled() {
		ev.Int("depth", info.Depth).
			Int("score", info.Score).
			Uint64("nodes", info.Nodes).
			Uint64("nps", info.NPS).
			Int("hashfull", info.HashFull).
			Strs("pv", root.SANLine(r.PV)).
			Msg("iteration")
	}

	if e.OnInfo != nil {
		e.OnInfo(info)
	}
}

func nps(nodes uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(nodes) / elapsed.Seconds())
}
