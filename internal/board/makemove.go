package board

// Undo is the state MakeMove cannot recompute on the way back. It must be
// passed to UnmakeMove with the same move, in strict reverse order.
type Undo struct {
	Captured       Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	Checkers       Bitboard
	Blockers       Bitboard
}

// captureSquare returns the square of the pawn taken en passant on to.
func captureSquare(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

// MakeMove plays m, which must be legal in p, and returns what UnmakeMove
// needs to take it back.
func (p *Position) MakeMove(m Move) Undo {
	undo := Undo{
		Captured:       NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		Checkers:       p.Checkers,
		Blockers:       p.Blockers,
	}
	p.history = append(p.history, p.Hash)

	us := p.SideToMove
	from, to, flag := m.From(), m.To(), m.Flag()
	piece := p.mailbox[from]

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	p.HalfMoveClock++
	if piece.Type() == Pawn {
		p.HalfMoveClock = 0
	}

	switch flag {
	case FlagKingCastle, FlagQueenCastle:
		c := &castles[us][flag-FlagKingCastle]
		rook := NewPiece(Rook, us)
		p.toggle(c.kingFrom, piece)
		p.toggle(c.kingTo, piece)
		p.toggle(c.rookFrom, rook)
		p.toggle(c.rookTo, rook)

	case FlagEnPassant:
		undo.Captured = NewPiece(Pawn, us.Other())
		p.toggle(captureSquare(to, us), undo.Captured)
		p.toggle(from, piece)
		p.toggle(to, piece)

	default:
		if m.IsCapture() {
			undo.Captured = p.mailbox[to]
			p.toggle(to, undo.Captured)
			p.HalfMoveClock = 0
		}
		p.toggle(from, piece)
		if m.IsPromotion() {
			p.toggle(to, NewPiece(m.Promotion(), us))
		} else {
			p.toggle(to, piece)
		}
		if flag == FlagDoublePush {
			p.EnPassant = (from + to) / 2
			p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		}
	}

	p.CastlingRights = p.CastlingRights.update(from, to)
	p.Hash ^= zobristCastling[p.CastlingRights]

	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = us.Other()
	p.updateThreats()
	return undo
}

// UnmakeMove takes back m, restoring p exactly as it was before MakeMove.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	if us == Black {
		p.FullMoveNumber--
	}

	from, to, flag := m.From(), m.To(), m.Flag()

	switch flag {
	case FlagKingCastle, FlagQueenCastle:
		c := &castles[us][flag-FlagKingCastle]
		king, rook := NewPiece(King, us), NewPiece(Rook, us)
		p.toggle(c.rookTo, rook)
		p.toggle(c.rookFrom, rook)
		p.toggle(c.kingTo, king)
		p.toggle(c.kingFrom, king)

	case FlagEnPassant:
		pawn := NewPiece(Pawn, us)
		p.toggle(to, pawn)
		p.toggle(from, pawn)
		p.toggle(captureSquare(to, us), undo.Captured)

	default:
		moved := p.mailbox[to]
		p.toggle(to, moved)
		if m.IsPromotion() {
			moved = NewPiece(Pawn, us)
		}
		p.toggle(from, moved)
		if undo.Captured != NoPiece {
			p.toggle(to, undo.Captured)
		}
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.Blockers = undo.Blockers
	p.history = p.history[:len(p.history)-1]
}
