package board

// MaxMoves bounds the number of pseudo-legal moves in any reachable position.
const MaxMoves = 256

// MoveList is a fixed-capacity list of moves with ordering scores.
type MoveList struct {
	moves  [MaxMoves]Move
	scores [MaxMoves]int32
	count  int
}

// Add appends a move with a zero score.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.scores[ml.count] = 0
	ml.count++
}

// Len returns the number of moves.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Score returns the ordering score at index i.
func (ml *MoveList) Score(i int) int32 {
	return ml.scores[i]
}

// SetScore sets the ordering score at index i.
func (ml *MoveList) SetScore(i int, score int32) {
	ml.scores[i] = score
}

// Swap exchanges two entries, scores included.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
	ml.scores[i], ml.scores[j] = ml.scores[j], ml.scores[i]
}

// PickBest moves the highest scored entry in [i, Len) to i and returns it.
func (ml *MoveList) PickBest(i int) Move {
	best := i
	for j := i + 1; j < ml.count; j++ {
		if ml.scores[j] > ml.scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
	}
	return ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Slice returns the moves as a slice aliasing the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
