package board

// IsDraw reports a draw by the fifty-move rule, insufficient material, or
// any repetition of the current position since the last irreversible move.
// Search uses it at every node, where a single repetition is treated as a
// draw.
func (p *Position) IsDraw() bool {
	return p.HalfMoveClock >= 100 || p.IsInsufficientMaterial() || p.IsRepetition()
}

// IsInsufficientMaterial reports whether neither side can possibly mate: no
// pawns, rooks or queens, and either at most three pieces in total or only
// bishops all on squares of one colour.
func (p *Position) IsInsufficientMaterial() bool {
	heavy := p.Pieces[White][Pawn] | p.Pieces[Black][Pawn] |
		p.Pieces[White][Rook] | p.Pieces[Black][Rook] |
		p.Pieces[White][Queen] | p.Pieces[Black][Queen]
	if heavy != 0 {
		return false
	}
	if p.AllOccupied.PopCount() <= 3 {
		return true
	}
	if p.Pieces[White][Knight]|p.Pieces[Black][Knight] != 0 {
		return false
	}
	bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop]
	return bishops&LightSquares == 0 || bishops&DarkSquares == 0
}

// repetitions counts earlier occurrences of the current position, stopping
// once limit is reached.
func (p *Position) repetitions(limit int) int {
	n := len(p.history)
	end := min(p.HalfMoveClock, n)
	count := 0
	for back := 4; back <= end; back += 2 {
		if p.history[n-back] == p.Hash {
			count++
			if count >= limit {
				break
			}
		}
	}
	return count
}

// IsRepetition reports whether the position occurred before within the
// reversible part of the game.
func (p *Position) IsRepetition() bool {
	return p.repetitions(1) >= 1
}

// IsThreefold reports whether the position has now occurred three times.
func (p *Position) IsThreefold() bool {
	return p.repetitions(2) >= 2
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.GenerateMoves(&ml, GenAll)
	for _, m := range ml.Slice() {
		if p.Legal(m) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move has no legal move but is not
// in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
