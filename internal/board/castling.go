package board

import "strings"

// CastlingRights is a 4-bit set of the castles still available.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// castlingMask[sq] holds the rights that survive a move touching sq.
var castlingMask [64]CastlingRights

func init() {
	for sq := range castlingMask {
		castlingMask[sq] = AllCastling
	}
	castlingMask[E1] &^= WhiteKingSide | WhiteQueenSide
	castlingMask[H1] &^= WhiteKingSide
	castlingMask[A1] &^= WhiteQueenSide
	castlingMask[E8] &^= BlackKingSide | BlackQueenSide
	castlingMask[H8] &^= BlackKingSide
	castlingMask[A8] &^= BlackQueenSide
}

// KingSide returns the king-side right for c.
func KingSide(c Color) CastlingRights {
	return WhiteKingSide << (2 * c)
}

// QueenSide returns the queen-side right for c.
func QueenSide(c Color) CastlingRights {
	return WhiteQueenSide << (2 * c)
}

// Has reports whether every right in r is held.
func (cr CastlingRights) Has(r CastlingRights) bool {
	return cr&r == r
}

// Any reports whether c holds either right.
func (cr CastlingRights) Any(c Color) bool {
	return cr&(KingSide(c)|QueenSide(c)) != 0
}

// update drops the rights lost by a move between from and to.
func (cr CastlingRights) update(from, to Square) CastlingRights {
	return cr & castlingMask[from] & castlingMask[to]
}

// String returns the FEN field, "-" when empty.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// castle describes the squares involved in one castle.
type castle struct {
	right            CastlingRights
	kingFrom, kingTo Square
	rookFrom, rookTo Square
	empty            Bitboard // must be vacant
	path             Bitboard // king must not be attacked on these
}

// castles is indexed by [color][0 king side, 1 queen side].
var castles = [2][2]castle{
	{
		{WhiteKingSide, E1, G1, H1, F1, SquareBB(F1) | SquareBB(G1), SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSide, E1, C1, A1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(C1) | SquareBB(D1)},
	},
	{
		{BlackKingSide, E8, G8, H8, F8, SquareBB(F8) | SquareBB(G8), SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSide, E8, C8, A8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(C8) | SquareBB(D8)},
	},
}
