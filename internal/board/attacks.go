package board

// Pre-computed attack tables for leaping pieces and square relations.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	betweenBB [64][64]Bitboard // squares strictly between two aligned squares
	lineBB    [64][64]Bitboard // full board line through two aligned squares
)

func init() {
	initLeapers()
	initMagics()
	initLines()
}

func initLeapers() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>15)&NotFileA | (bb>>17)&NotFileH |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>6)&NotFileAB | (bb>>10)&NotFileGH

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

// initLines derives between and line sets from the slider tables: two squares
// are aligned when one lies on the other's empty-board rook or bishop rays.
func initLines() {
	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			if a == b {
				continue
			}
			ab, bb := SquareBB(a), SquareBB(b)
			switch {
			case RookAttacks(a, Empty)&bb != 0:
				betweenBB[a][b] = RookAttacks(a, bb) & RookAttacks(b, ab)
				lineBB[a][b] = walkLine(a, b)
			case BishopAttacks(a, Empty)&bb != 0:
				betweenBB[a][b] = BishopAttacks(a, bb) & BishopAttacks(b, ab)
				lineBB[a][b] = walkLine(a, b)
			}
		}
	}
}

// walkLine returns the rank, file or diagonal through a and b, edge to edge.
// The squares must be aligned.
func walkLine(a, b Square) Bitboard {
	df := sign(b.File() - a.File())
	dr := sign(b.Rank() - a.Rank())
	line := SquareBB(a)
	for _, dir := range [2]int{1, -1} {
		f, r := a.File()+dir*df, a.Rank()+dir*dr
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			line |= SquareBB(NewSquare(f, r))
			f += dir * df
			r += dir * dr
		}
	}
	return line
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a c pawn on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns the bishop attack set from sq given occupancy. The
// first blocker on each ray is included.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return bishopTable[m.index(occupied)]
}

// RookAttacks returns the rook attack set from sq given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	return rookTable[m.index(occupied)]
}

// QueenAttacks returns the union of bishop and rook attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Attacks dispatches on piece type. Pawns are not handled here because their
// attacks depend on color; use PawnAttacks.
func Attacks(pt PieceType, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}

// Between returns the squares strictly between a and b, or Empty when they
// are not on a common rank, file or diagonal.
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// Line returns the whole line through a and b, or Empty when unaligned.
func Line(a, b Square) Bitboard {
	return lineBB[a][b]
}

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool {
	return lineBB[a][b]&SquareBB(c) != 0
}
