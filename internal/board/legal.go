package board

// Legal reports whether a pseudo-legal move leaves the mover's king safe.
// It relies on the cached Checkers and Blockers of the side to move.
func (p *Position) Legal(m Move) bool {
	us, them := p.SideToMove, p.SideToMove.Other()
	from, to := m.From(), m.To()
	ksq := p.KingSquare[us]

	switch {
	case m.IsCastle():
		if p.Checkers != 0 {
			return false
		}
		c := &castles[us][m.Flag()-FlagKingCastle]
		for path := c.path; path != 0; {
			if p.IsSquareAttacked(path.PopLSB(), them) {
				return false
			}
		}
		return true

	case m.IsEnPassant():
		// Both pawns leave their squares at once, which can uncover a slider
		// along the rank as well as a diagonal.
		occ := p.AllOccupied ^ SquareBB(from) ^ SquareBB(captureSquare(to, us)) | SquareBB(to)
		return RookAttacks(ksq, occ)&p.pieces(them, Rook, Queen) == 0 &&
			BishopAttacks(ksq, occ)&p.pieces(them, Bishop, Queen) == 0

	case from == ksq:
		return p.AttackersByColor(to, them, p.AllOccupied^SquareBB(from)) == 0
	}

	return !p.Blockers.Has(from) || Aligned(from, to, ksq)
}

// PseudoLegal reports whether m is one of the moves GenerateMoves(GenAll)
// would produce in p. Any 16-bit value is accepted, so table moves from other
// positions can be checked before use.
func (p *Position) PseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	us := p.SideToMove
	from, to, flag := m.From(), m.To(), m.Flag()

	piece := p.mailbox[from]
	if piece == NoPiece || piece.Color() != us || from == to {
		return false
	}
	if p.Occupied[us].Has(to) {
		return false
	}
	target := p.mailbox[to]
	ksq := p.KingSquare[us]

	if m.IsCastle() {
		if piece.Type() != King || p.Checkers != 0 {
			return false
		}
		c := &castles[us][flag-FlagKingCastle]
		return from == c.kingFrom && to == c.kingTo &&
			p.CastlingRights.Has(c.right) &&
			p.AllOccupied&c.empty == 0 &&
			p.mailbox[c.rookFrom] == NewPiece(Rook, us)
	}

	if piece.Type() == King {
		if !kingAttacks[from].Has(to) {
			return false
		}
		return (flag == FlagQuiet && target == NoPiece) ||
			(flag == FlagCapture && target != NoPiece)
	}

	if p.Checkers.Many() {
		return false
	}
	mask := Universe
	if p.Checkers != 0 {
		mask = Between(ksq, p.Checkers.LSB()) | p.Checkers
	}

	if piece.Type() == Pawn {
		return p.pseudoLegalPawn(m, mask)
	}

	if flag != FlagQuiet && flag != FlagCapture {
		return false
	}
	if (flag == FlagCapture) != (target != NoPiece) {
		return false
	}
	return Attacks(piece.Type(), from, p.AllOccupied).Has(to) && mask.Has(to)
}

func (p *Position) pseudoLegalPawn(m Move, mask Bitboard) bool {
	us, them := p.SideToMove, p.SideToMove.Other()
	from, to, flag := m.From(), m.To(), m.Flag()
	target := p.mailbox[to]

	if flag == FlagEnPassant {
		capSq := captureSquare(to, us)
		return to == p.EnPassant &&
			pawnAttacks[us][from].Has(to) &&
			p.mailbox[capSq] == NewPiece(Pawn, them) &&
			(mask.Has(to) || mask.Has(capSq))
	}

	if m.IsPromotion() != (to.RelativeRank(us) == 7) {
		return false
	}
	if !mask.Has(to) {
		return false
	}

	if m.IsCapture() {
		if flag != FlagCapture && !m.IsPromotion() {
			return false
		}
		return target != NoPiece && pawnAttacks[us][from].Has(to)
	}

	if target != NoPiece {
		return false
	}
	delta := pushDelta[us]
	switch flag {
	case FlagDoublePush:
		return from.RelativeRank(us) == 1 &&
			int(to) == int(from)+2*delta &&
			p.IsEmpty(Square(int(from)+delta))
	case FlagQuiet, FlagPromoKnight, FlagPromoBishop, FlagPromoRook, FlagPromoQueen:
		return int(to) == int(from)+delta
	}
	return false
}
