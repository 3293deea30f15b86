package board

import (
	"fmt"
	"strings"
)

// ParseMove matches coordinate notation ("e2e4", "e7e8q") against the legal
// moves of p. Castles are given as the king's two-square move.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range p.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q in %s", ErrIllegalMove, s, p.FEN())
}

// SAN returns m, which must be legal, in standard algebraic notation.
func (p *Position) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}
	from, to := m.From(), m.To()

	var sb strings.Builder
	switch {
	case m.Flag() == FlagKingCastle:
		sb.WriteString("O-O")
	case m.Flag() == FlagQueenCastle:
		sb.WriteString("O-O-O")
	default:
		pt := p.mailbox[from].Type()
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(p.disambiguation(m, pt))
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	undo := p.MakeMove(m)
	if p.InCheck() {
		if p.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	p.UnmakeMove(m, undo)
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same type can also reach m's destination.
func (p *Position) disambiguation(m Move, pt PieceType) string {
	from := m.From()
	var sameFile, sameRank, ambiguous bool
	for _, other := range p.LegalMoves() {
		of := other.From()
		if other.To() != m.To() || of == from || p.mailbox[of].Type() != pt {
			continue
		}
		ambiguous = true
		sameFile = sameFile || of.File() == from.File()
		sameRank = sameRank || of.Rank() == from.Rank()
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// SANLine renders a sequence of moves starting from p in SAN. p is left
// unchanged. Rendering stops at the first move that is not legal.
func (p *Position) SANLine(moves []Move) []string {
	line := make([]string, 0, len(moves))
	undos := make([]Undo, 0, len(moves))
	played := moves[:0:0]
	for _, m := range moves {
		if !p.PseudoLegal(m) || !p.Legal(m) {
			break
		}
		line = append(line, p.SAN(m))
		undos = append(undos, p.MakeMove(m))
		played = append(played, m)
	}
	for i := len(played) - 1; i >= 0; i-- {
		p.UnmakeMove(played[i], undos[i])
	}
	return line
}
