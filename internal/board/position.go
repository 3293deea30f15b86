package board

import (
	"fmt"
	"strings"
)

// Position is a complete, mutable chess position. Search code keeps one per
// worker and walks the tree with MakeMove/UnmakeMove; Copy clones it for
// another goroutine.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	Occupied    [2]Bitboard
	AllOccupied Bitboard
	KingSquare  [2]Square

	// mailbox mirrors Pieces for O(1) lookup by square.
	mailbox [64]Piece

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare when there is no en passant target
	HalfMoveClock  int    // plies since the last capture or pawn move
	FullMoveNumber int

	Hash uint64

	// Threat state for the side to move, refreshed after every mutation.
	Checkers Bitboard // enemy pieces giving check
	Blockers Bitboard // own pieces pinned to the king

	// history holds the hash before each move made, oldest first.
	history []uint64
}

// NewPosition returns the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy returns a deep copy that shares nothing with p.
func (p *Position) Copy() *Position {
	cp := *p
	cp.history = append(make([]uint64, 0, len(p.history)+64), p.history...)
	return &cp
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	return p.mailbox[sq]
}

// IsEmpty reports whether sq is vacant.
func (p *Position) IsEmpty(sq Square) bool {
	return p.mailbox[sq] == NoPiece
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// Ply returns the number of half-moves played since the game start, derived
// from the full-move counter.
func (p *Position) Ply() int {
	return 2*(p.FullMoveNumber-1) + int(p.SideToMove)
}

// toggle flips piece on sq in every representation, hash included. Calling it
// twice with the same arguments restores the original state.
func (p *Position) toggle(sq Square, piece Piece) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] ^= bb
	p.Occupied[c] ^= bb
	p.AllOccupied ^= bb
	p.Hash ^= zobristPiece[c][pt][sq]

	if p.mailbox[sq] == NoPiece {
		p.mailbox[sq] = piece
		if pt == King {
			p.KingSquare[c] = sq
		}
	} else {
		p.mailbox[sq] = NoPiece
	}
}

// pieces returns the union of the given types for color c.
func (p *Position) pieces(c Color, types ...PieceType) Bitboard {
	var bb Bitboard
	for _, pt := range types {
		bb |= p.Pieces[c][pt]
	}
	return bb
}

// AttackersByColor returns the pieces of color c attacking sq under the given
// occupancy. Attacks are computed outward from sq.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	pc := &p.Pieces[c]
	return pawnAttacks[c.Other()][sq]&pc[Pawn] |
		knightAttacks[sq]&pc[Knight] |
		kingAttacks[sq]&pc[King] |
		BishopAttacks(sq, occupied)&(pc[Bishop]|pc[Queen]) |
		RookAttacks(sq, occupied)&(pc[Rook]|pc[Queen])
}

// IsSquareAttacked reports whether color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersByColor(sq, by, p.AllOccupied) != 0
}

// snipers returns the enemy sliders that would attack sq on an empty board.
func (p *Position) snipers(sq Square, us Color) Bitboard {
	them := us.Other()
	return RookAttacks(sq, Empty)&p.pieces(them, Rook, Queen) |
		BishopAttacks(sq, Empty)&p.pieces(them, Bishop, Queen)
}

// updateThreats recomputes Checkers and Blockers for the side to move.
func (p *Position) updateThreats() {
	us := p.SideToMove
	ksq := p.KingSquare[us]

	p.Checkers = p.AttackersByColor(ksq, us.Other(), p.AllOccupied)
	p.Blockers = Empty

	for snipers := p.snipers(ksq, us); snipers != 0; {
		sniper := snipers.PopLSB()
		between := Between(ksq, sniper) & p.AllOccupied
		if between != 0 && !between.Many() {
			p.Blockers |= between & p.Occupied[us]
		}
	}
}

// String draws the board followed by the FEN, key and checkers.
func (p *Position) String() string {
	var sb strings.Builder
	const rule = " +---+---+---+---+---+---+---+---+\n"
	sb.WriteString(rule)
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			piece := p.mailbox[NewSquare(file, rank)]
			c := " "
			if piece != NoPiece {
				c = piece.String()
			}
			fmt.Fprintf(&sb, " | %s", c)
		}
		fmt.Fprintf(&sb, " | %d\n%s", rank+1, rule)
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\n", p.FEN())
	fmt.Fprintf(&sb, "Key: %016X\n", p.Hash)
	sb.WriteString("Checkers:")
	for _, sq := range p.Checkers.Squares() {
		sb.WriteString(" " + sq.String())
	}
	sb.WriteByte('\n')
	return sb.String()
}
