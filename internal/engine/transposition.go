package engine

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// Bound indicates how a stored score relates to the true value.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundExact       // Exact score
	BoundUpper       // Failed low, true score <= stored
	BoundLower       // Failed high, true score >= stored
)

// Cutoff reports whether a score with this bound settles a node searched with
// the window (alpha, beta).
func (b Bound) Cutoff(score, alpha, beta int) bool {
	switch b {
	case BoundExact:
		return true
	case BoundUpper:
		return score <= alpha
	case BoundLower:
		return score >= beta
	}
	return false
}

const entrySize = 8

// Packed slot layout, high to low:
// checksum(16) | move(16) | score(16) | depth(8) | bound(8, low 2 bits used)
const (
	checksumShift = 48
	moveShift     = 32
	scoreShift    = 16
	depthShift    = 8
)

// TTEntry is a decoded transposition table slot.
type TTEntry struct {
	Move  board.Move
	Score int
	Depth int
	Bound Bound
}

func checksum(key uint64) uint16 {
	return uint16(key >> checksumShift)
}

func pack(check uint16, move board.Move, score, depth int, bound Bound) uint64 {
	return uint64(check)<<checksumShift |
		uint64(move)<<moveShift |
		uint64(uint16(int16(score)))<<scoreShift |
		uint64(uint8(int8(depth)))<<depthShift |
		uint64(bound&3)
}

func unpack(raw uint64) (uint16, TTEntry) {
	return uint16(raw >> checksumShift), TTEntry{
		Move:  board.Move(raw >> moveShift),
		Score: int(int16(raw >> scoreShift)),
		Depth: int(int8(raw >> depthShift)),
		Bound: Bound(raw & 3),
	}
}

// TranspositionTable is a lock-free hash table shared by all search workers.
// Every slot is one atomic word, so a reader sees either the old or the new
// entry and never a mix of both.
type TranspositionTable struct {
	entries []atomic.Uint64
	mask    uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table to sizeMB megabytes, rounded down to a power
// of two entries. All entries are lost. It must not run during a search.
func (tt *TranspositionTable) Resize(sizeMB int) {
	numEntries := roundDownToPowerOf2(uint64(max(sizeMB, 1)) * 1024 * 1024 / entrySize)
	tt.entries = make([]atomic.Uint64, numEntries)
	tt.mask = numEntries - 1
}

// Clear zeroes every slot, splitting the work across the available CPUs.
func (tt *TranspositionTable) Clear() {
	chunks := runtime.GOMAXPROCS(0)
	size := (len(tt.entries) + chunks - 1) / chunks

	var g errgroup.Group
	for lo := 0; lo < len(tt.entries); lo += size {
		hi := min(lo+size, len(tt.entries))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				tt.entries[i].Store(0)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Probe looks up a position. The score is returned as stored; callers convert
// mate scores with scoreFromTT.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	raw := tt.entries[key&tt.mask].Load()
	check, entry := unpack(raw)
	if entry.Bound == BoundNone || check != checksum(key) {
		return TTEntry{}, false
	}
	return entry, true
}

// Store saves a search result found at the given height. The slot keeps its
// contents when it already holds this position at equal or greater depth, and
// a missing move never overwrites a known one for the same position.
func (tt *TranspositionTable) Store(key uint64, move board.Move, score, depth int, bound Bound, height int) {
	slot := &tt.entries[key&tt.mask]
	check := checksum(key)

	oldCheck, old := unpack(slot.Load())
	if old.Bound != BoundNone && oldCheck == check {
		if old.Depth >= depth {
			return
		}
		if move == board.NoMove {
			move = old.Move
		}
	}

	slot.Store(pack(check, move, scoreToTT(score, height), depth, bound))
}

// HashFull returns the permille (parts per thousand) of sampled slots in use.
func (tt *TranspositionTable) HashFull() int {
	sample := min(1000, len(tt.entries))
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].Load() != 0 {
			used++
		}
	}
	return used * 1000 / sample
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() int {
	return len(tt.entries)
}
