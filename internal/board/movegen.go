package board

// GenKind selects which category of pseudo-legal moves to generate.
type GenKind uint8

const (
	// GenCaptures yields captures, en passant, every promotion capture and
	// the quiet queen promotion.
	GenCaptures GenKind = 1 << iota
	// GenQuiets yields non-captures, castles and quiet underpromotions.
	GenQuiets

	GenAll = GenCaptures | GenQuiets
)

// pushDelta is the square offset of a single pawn push for each color.
var pushDelta = [2]int{8, -8}

// GenerateMoves appends the pseudo-legal moves of the given kind to ml. In
// check, only evasions are produced: king moves, and when there is a single
// checker, captures of it and interpositions. The two kinds never overlap.
func (p *Position) GenerateMoves(ml *MoveList, kind GenKind) {
	us := p.SideToMove
	ksq := p.KingSquare[us]

	p.genKingMoves(ml, kind, ksq)
	if p.Checkers.Many() {
		return
	}

	mask := Universe
	if p.Checkers != 0 {
		mask = Between(ksq, p.Checkers.LSB()) | p.Checkers
	}

	p.genPawnMoves(ml, kind, mask)

	var targets Bitboard
	if kind&GenCaptures != 0 {
		targets |= p.Occupied[us.Other()]
	}
	if kind&GenQuiets != 0 {
		targets |= ^p.AllOccupied
	}
	targets &= mask

	for pt := Knight; pt <= Queen; pt++ {
		for pieces := p.Pieces[us][pt]; pieces != 0; {
			from := pieces.PopLSB()
			p.addPieceMoves(ml, from, Attacks(pt, from, p.AllOccupied)&targets)
		}
	}
}

// addPieceMoves adds a move from from to every square in dests, flagged as a
// capture when the destination is occupied.
func (p *Position) addPieceMoves(ml *MoveList, from Square, dests Bitboard) {
	for dests != 0 {
		to := dests.PopLSB()
		flag := FlagQuiet
		if p.mailbox[to] != NoPiece {
			flag = FlagCapture
		}
		ml.Add(NewMove(from, to, flag))
	}
}

func (p *Position) genKingMoves(ml *MoveList, kind GenKind, ksq Square) {
	us := p.SideToMove
	var targets Bitboard
	if kind&GenCaptures != 0 {
		targets |= p.Occupied[us.Other()]
	}
	if kind&GenQuiets != 0 {
		targets |= ^p.AllOccupied
	}
	p.addPieceMoves(ml, ksq, kingAttacks[ksq]&targets)

	if kind&GenQuiets == 0 || p.Checkers != 0 {
		return
	}
	for side := range castles[us] {
		c := &castles[us][side]
		if p.CastlingRights.Has(c.right) && p.AllOccupied&c.empty == 0 {
			ml.Add(NewMove(c.kingFrom, c.kingTo, FlagKingCastle+MoveFlag(side)))
		}
	}
}

func (p *Position) genPawnMoves(ml *MoveList, kind GenKind, mask Bitboard) {
	us, them := p.SideToMove, p.SideToMove.Other()
	pawns := p.Pieces[us][Pawn]
	empty := ^p.AllOccupied
	delta := pushDelta[us]

	promoRank, thirdRank := Rank8, Rank3
	if us == Black {
		promoRank, thirdRank = Rank1, Rank6
	}

	// Single pushes shift by rotation so one code path serves both colors.
	push1 := pawns.Rotate(delta) & empty
	push2 := (push1 & thirdRank).Rotate(delta) & empty & mask
	push1 &= mask

	if kind&GenCaptures != 0 {
		enemies := p.Occupied[them] & mask
		for bb := pawns; bb != 0; {
			from := bb.PopLSB()
			for caps := pawnAttacks[us][from] & enemies; caps != 0; {
				to := caps.PopLSB()
				if promoRank.Has(to) {
					addPromotions(ml, from, to, true, Knight, Bishop, Rook, Queen)
				} else {
					ml.Add(NewMove(from, to, FlagCapture))
				}
			}
		}

		for bb := push1 & promoRank; bb != 0; {
			to := bb.PopLSB()
			addPromotions(ml, Square(int(to)-delta), to, false, Queen)
		}

		if ep := p.EnPassant; ep != NoSquare {
			// In check the capture must take the checker or land on the block square.
			if mask.Has(ep) || mask.Has(captureSquare(ep, us)) {
				for bb := pawnAttacks[them][ep] & pawns; bb != 0; {
					ml.Add(NewMove(bb.PopLSB(), ep, FlagEnPassant))
				}
			}
		}
	}

	if kind&GenQuiets != 0 {
		for bb := push1 &^ promoRank; bb != 0; {
			to := bb.PopLSB()
			ml.Add(NewMove(Square(int(to)-delta), to, FlagQuiet))
		}
		for bb := push2; bb != 0; {
			to := bb.PopLSB()
			ml.Add(NewMove(Square(int(to)-2*delta), to, FlagDoublePush))
		}
		for bb := push1 & promoRank; bb != 0; {
			to := bb.PopLSB()
			addPromotions(ml, Square(int(to)-delta), to, false, Knight, Bishop, Rook)
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, capture bool, types ...PieceType) {
	for _, pt := range types {
		ml.Add(NewMove(from, to, PromotionFlag(pt, capture)))
	}
}

// GenerateLegal appends every legal move to ml.
func (p *Position) GenerateLegal(ml *MoveList) {
	var pseudo MoveList
	p.GenerateMoves(&pseudo, GenAll)
	for _, m := range pseudo.Slice() {
		if p.Legal(m) {
			ml.Add(m)
		}
	}
}

// LegalMoves returns the legal moves as a fresh slice.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GenerateLegal(&ml)
	return append([]Move(nil), ml.Slice()...)
}
