package board

// Move packs a move into 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-15: flag (see MoveFlag)
type Move uint16

// MoveFlag is the 4-bit kind of a move. Bit 3 marks promotions, bit 2 captures.
type MoveFlag uint8

const (
	FlagQuiet       MoveFlag = 0
	FlagDoublePush  MoveFlag = 1
	FlagKingCastle  MoveFlag = 2
	FlagQueenCastle MoveFlag = 3
	FlagCapture     MoveFlag = 4
	FlagEnPassant   MoveFlag = 5

	FlagPromoKnight MoveFlag = 8
	FlagPromoBishop MoveFlag = 9
	FlagPromoRook   MoveFlag = 10
	FlagPromoQueen  MoveFlag = 11

	FlagPromoCaptureKnight MoveFlag = 12
	FlagPromoCaptureBishop MoveFlag = 13
	FlagPromoCaptureRook   MoveFlag = 14
	FlagPromoCaptureQueen  MoveFlag = 15

	flagPromotionBit MoveFlag = 8
	flagCaptureBit   MoveFlag = 4
)

// NoMove is the all-zero pattern; it never encodes a real move.
const NoMove Move = 0

// NewMove builds a move from its parts.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from&63) | Move(to&63)<<6 | Move(flag&15)<<12
}

// PromotionFlag returns the promotion flag for pt, with the capture bit when
// capture is set.
func PromotionFlag(pt PieceType, capture bool) MoveFlag {
	flag := flagPromotionBit | MoveFlag(pt-Knight)
	if capture {
		flag |= flagCaptureBit
	}
	return flag
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> 6 & 0x3F)
}

// Flag returns the move kind.
func (m Move) Flag() MoveFlag {
	return MoveFlag(m >> 12)
}

// IsCapture reports whether the move removes an enemy piece, en passant included.
func (m Move) IsCapture() bool {
	return m.Flag()&flagCaptureBit != 0
}

// IsPromotion reports whether a pawn is promoted.
func (m Move) IsPromotion() bool {
	return m.Flag()&flagPromotionBit != 0
}

// IsQuiet reports whether the move neither captures nor promotes.
func (m Move) IsQuiet() bool {
	return m.Flag()&(flagCaptureBit|flagPromotionBit) == 0
}

// IsCastle reports whether the move is a castle (encoded as the king's move).
func (m Move) IsCastle() bool {
	f := m.Flag()
	return f == FlagKingCastle || f == FlagQueenCastle
}

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// Promotion returns the promoted piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Flag()&3)
}

// String returns coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}
