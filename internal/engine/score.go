package engine

// Search bounds and score constants. Scores are centipawns from the side to
// move's point of view; anything beyond Mate is a forced mate. Inf lies above
// every mate score, so being mated at the root is not the -Inf sentinel.
const (
	MaxPly   = 128
	MaxDepth = 64

	MateScore = 30000
	Inf       = MateScore + 1
	Mate      = MateScore - MaxPly
	Draw      = 0
)

// MateIn is the score for delivering mate ply half-moves from the root.
func MateIn(ply int) int {
	return MateScore - ply
}

// MatedIn is the score for being mated ply half-moves from the root.
func MatedIn(ply int) int {
	return -MateScore + ply
}

// IsMate reports whether score encodes a forced mate for either side.
func IsMate(score int) bool {
	return absolute(score) > Mate
}

// MateMoves converts a mate score into full moves, negative when the side to
// move is being mated. It returns 0 for ordinary scores.
func MateMoves(score int) int {
	switch {
	case score > Mate:
		return (MateScore - score + 1) / 2
	case score < -Mate:
		return -(MateScore + score) / 2
	}
	return 0
}

// scoreToTT makes a mate score relative to the node being stored.
func scoreToTT(score, height int) int {
	if score > Mate {
		return score + height
	}
	if score < -Mate {
		return score - height
	}
	return score
}

// scoreFromTT converts a stored mate score back to the root distance.
func scoreFromTT(score, height int) int {
	if score > Mate {
		return score - height
	}
	if score < -Mate {
		return score + height
	}
	return score
}
