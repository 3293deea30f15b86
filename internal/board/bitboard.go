package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares: bit i is set when square i is a member.
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = FileA << 1
	FileC Bitboard = FileA << 2
	FileD Bitboard = FileA << 3
	FileE Bitboard = FileA << 4
	FileF Bitboard = FileA << 5
	FileG Bitboard = FileA << 6
	FileH Bitboard = FileA << 7
)

// Rank masks
const (
	Rank1 Bitboard = 0xFF
	Rank2 Bitboard = Rank1 << (8 * 1)
	Rank3 Bitboard = Rank1 << (8 * 2)
	Rank4 Bitboard = Rank1 << (8 * 3)
	Rank5 Bitboard = Rank1 << (8 * 4)
	Rank6 Bitboard = Rank1 << (8 * 5)
	Rank7 Bitboard = Rank1 << (8 * 6)
	Rank8 Bitboard = Rank1 << (8 * 7)
)

const (
	Empty    Bitboard = 0
	Universe Bitboard = ^Empty

	NotFileA  Bitboard = ^FileA
	NotFileH  Bitboard = ^FileH
	NotFileAB Bitboard = ^(FileA | FileB)
	NotFileGH Bitboard = ^(FileG | FileH)

	LightSquares Bitboard = 0x55AA55AA55AA55AA
	DarkSquares  Bitboard = ^LightSquares
)

// FileMask and RankMask index the masks above by number.
var (
	FileMask = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}
	RankMask = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}
)

// SquareBB returns the set containing only sq.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// Has reports whether sq is a member.
func (b Bitboard) Has(sq Square) bool {
	return b&(1<<sq) != 0
}

// Many reports whether the set has two or more members.
func (b Bitboard) Many() bool {
	return b&(b-1) != 0
}

// PopCount returns the number of members.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest member, or NoSquare for the empty set.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes the lowest member and returns it.
func (b *Bitboard) PopLSB() Square {
	sq := Square(bits.TrailingZeros64(uint64(*b)))
	*b &= *b - 1
	return sq
}

// Rotate rotates the set left by n bits. Pawn pushes use it as a branch-free
// shift: 8 moves a rank up, 56 (i.e. -8) a rank down.
func (b Bitboard) Rotate(n int) Bitboard {
	return Bitboard(bits.RotateLeft64(uint64(b), n))
}

// North shifts one rank toward rank 8.
func (b Bitboard) North() Bitboard { return b << 8 }

// South shifts one rank toward rank 1.
func (b Bitboard) South() Bitboard { return b >> 8 }

// East shifts one file toward the h-file.
func (b Bitboard) East() Bitboard { return (b << 1) & NotFileA }

// West shifts one file toward the a-file.
func (b Bitboard) West() Bitboard { return (b >> 1) & NotFileH }

func (b Bitboard) NorthEast() Bitboard { return (b << 9) & NotFileA }
func (b Bitboard) NorthWest() Bitboard { return (b << 7) & NotFileH }
func (b Bitboard) SouthEast() Bitboard { return (b >> 7) & NotFileA }
func (b Bitboard) SouthWest() Bitboard { return (b >> 9) & NotFileH }

// ForEachSubset calls f for every subset of b, starting with the empty set
// (carry-rippler enumeration).
func (b Bitboard) ForEachSubset(f func(Bitboard)) {
	var subset Bitboard
	for {
		f(subset)
		subset = (subset - b) & b
		if subset == 0 {
			return
		}
	}
}

// Squares returns the members in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// String draws the set as an 8x8 grid, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		for file := 0; file < 8; file++ {
			if b.Has(NewSquare(file, rank)) {
				sb.WriteString(" 1")
			} else {
				sb.WriteString(" .")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
