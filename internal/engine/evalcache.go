package engine

// EvalEntry stores one cached static evaluation.
type EvalEntry struct {
	Key   uint64
	Score int32
	valid bool
}

// EvalCache is a direct-mapped cache of static evaluations keyed by zobrist
// hash. Each worker owns one, so it needs no synchronization.
type EvalCache struct {
	entries []EvalEntry
	mask    uint64
}

// NewEvalCache creates an evaluation cache of roughly sizeMB megabytes.
func NewEvalCache(sizeMB int) *EvalCache {
	// 16 bytes per entry after padding
	numEntries := roundDownToPowerOf2(uint64(max(sizeMB, 1)) * 1024 * 1024 / 16)
	return &EvalCache{
		entries: make([]EvalEntry, numEntries),
		mask:    numEntries - 1,
	}
}

// Probe looks up a cached evaluation.
func (ec *EvalCache) Probe(key uint64) (int, bool) {
	entry := &ec.entries[key&ec.mask]
	if entry.valid && entry.Key == key {
		return int(entry.Score), true
	}
	return 0, false
}

// Store caches an evaluation, replacing whatever shared the slot.
func (ec *EvalCache) Store(key uint64, score int) {
	ec.entries[key&ec.mask] = EvalEntry{Key: key, Score: int32(score), valid: true}
}

// Clear empties the cache.
func (ec *EvalCache) Clear() {
	clear(ec.entries)
}
