package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no analysis is stored for a position.
var ErrNotFound = errors.New("analysis not found")

var analysisPrefix = []byte("analysis/")

// Analysis is a completed search result for one position.
type Analysis struct {
	FEN     string    `json:"fen"`
	Move    string    `json:"move"`
	Score   int       `json:"score"`
	Depth   int       `json:"depth"`
	Nodes   uint64    `json:"nodes"`
	PV      []string  `json:"pv"`
	Updated time.Time `json:"updated"`
}

// AnalysisStore keeps search results in BadgerDB keyed by zobrist hash.
type AnalysisStore struct {
	db *badger.DB
}

// Open opens or creates a store in dir.
func Open(dir string) (*AnalysisStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open analysis store %s: %w", dir, err)
	}
	return &AnalysisStore{db: db}, nil
}

// OpenDefault opens the store in the platform data directory.
func OpenDefault() (*AnalysisStore, error) {
	dir, err := AnalysisDir()
	if err != nil {
		return nil, fmt.Errorf("locate analysis store: %w", err)
	}
	return Open(dir)
}

// Close closes the database
func (s *AnalysisStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func analysisKey(hash uint64) []byte {
	key := make([]byte, len(analysisPrefix)+8)
	copy(key, analysisPrefix)
	binary.BigEndian.PutUint64(key[len(analysisPrefix):], hash)
	return key
}

func get(txn *badger.Txn, key []byte) (Analysis, error) {
	var a Analysis
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &a)
	})
	return a, err
}

// Save stores a for the position with the given hash. A stored result from a
// deeper search is kept; the returned bool reports whether a was written.
func (s *AnalysisStore) Save(hash uint64, a Analysis) (bool, error) {
	if a.Updated.IsZero() {
		a.Updated = time.Now()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode analysis: %w", err)
	}

	key := analysisKey(hash)
	written := false
	err = s.db.Update(func(txn *badger.Txn) error {
		old, err := get(txn, key)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		case old.Depth > a.Depth:
			return nil
		}
		written = true
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("save analysis %016X: %w", hash, err)
	}
	return written, nil
}

// Load returns the analysis stored for hash, or ErrNotFound.
func (s *AnalysisStore) Load(hash uint64) (Analysis, error) {
	var a Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		a, err = get(txn, analysisKey(hash))
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, fmt.Errorf("load analysis %016X: %w", hash, err)
	}
	return a, nil
}

// Delete removes the analysis for hash. Deleting a missing entry is not an
// error.
func (s *AnalysisStore) Delete(hash uint64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(analysisKey(hash))
	})
	if err != nil {
		return fmt.Errorf("delete analysis %016X: %w", hash, err)
	}
	return nil
}

// Count returns the number of stored positions.
func (s *AnalysisStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = analysisPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}
