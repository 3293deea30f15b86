package board

import (
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a six-field FEN record. On failure it returns a *FENError
// naming the rejected field.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fenError("", fen, ErrFieldCount, "got %d", len(fields))
	}

	pos := &Position{EnPassant: NoSquare}
	for sq := range pos.mailbox {
		pos.mailbox[sq] = NoPiece
	}

	if err := pos.parsePlacement(fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fenError(FieldSideToMove, fields[1], ErrSideToMove, "")
	}

	if err := pos.parseCastling(fields[2]); err != nil {
		return nil, err
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fenError(FieldEnPassant, fields[3], ErrEnPassant, "")
		}
		pos.EnPassant = sq
	}

	hmc, err := strconv.Atoi(fields[4])
	if err != nil || hmc < 0 {
		return nil, fenError(FieldHalfMove, fields[4], ErrHalfMove, "")
	}
	pos.HalfMoveClock = hmc

	fmn, err := strconv.Atoi(fields[5])
	if err != nil || fmn < 1 {
		return nil, fenError(FieldFullMove, fields[5], ErrFullMove, "")
	}
	pos.FullMoveNumber = fmn

	if err := pos.validate(); err != nil {
		return nil, err
	}

	pos.Hash = pos.ComputeHash()
	pos.updateThreats()
	return pos, nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError(FieldPlacement, placement, ErrPlacement, "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(c)
			if piece == NoPiece {
				return fenError(FieldPlacement, placement, ErrPlacement, "bad piece %q", c)
			}
			if file > 7 {
				return fenError(FieldPlacement, placement, ErrPlacement, "rank %d overflows", rank+1)
			}
			p.toggle(NewSquare(file, rank), piece)
			file++
		}
		if file != 8 {
			return fenError(FieldPlacement, placement, ErrPlacement, "rank %d has %d squares", rank+1, file)
		}
	}
	return nil
}

func (p *Position) parseCastling(s string) error {
	if s == "-" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte("KQkq", s[i])
		if idx < 0 {
			return fenError(FieldCastling, s, ErrCastling, "bad flag %q", s[i])
		}
		right := CastlingRights(1) << idx
		if p.CastlingRights&right != 0 {
			return fenError(FieldCastling, s, ErrCastling, "duplicate flag %q", s[i])
		}
		p.CastlingRights |= right
	}
	return nil
}

// validate rejects placements that no legal game can reach in ways the move
// generator depends on.
func (p *Position) validate() error {
	placement := p.placementString()
	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return fenError(FieldPlacement, placement, ErrInvalidPosition, "%s has %d kings", c, n)
		}
		p.KingSquare[c] = p.Pieces[c][King].LSB()
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fenError(FieldPlacement, placement, ErrInvalidPosition, "pawn on back rank")
	}
	for c := White; c <= Black; c++ {
		if n := p.Occupied[c].PopCount(); n > 16 {
			return fenError(FieldPlacement, placement, ErrInvalidPosition, "%s has %d pieces", c, n)
		}
		// Every piece beyond the initial set stands for a promoted pawn
		pc := &p.Pieces[c]
		promoted := pc[Pawn].PopCount() +
			max(pc[Knight].PopCount()-2, 0) + max(pc[Bishop].PopCount()-2, 0) +
			max(pc[Rook].PopCount()-2, 0) + max(pc[Queen].PopCount()-1, 0)
		if promoted > 8 {
			return fenError(FieldPlacement, placement, ErrInvalidPosition, "%s has more pawns and promoted pieces than 8 pawns allow", c)
		}
	}

	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare[them], p.SideToMove) {
		return fenError(FieldPosition, placement, ErrInvalidPosition, "side not to move is in check")
	}

	for c := White; c <= Black; c++ {
		for side := range castles[c] {
			cs := &castles[c][side]
			if !p.CastlingRights.Has(cs.right) {
				continue
			}
			if p.mailbox[cs.kingFrom] != NewPiece(King, c) || p.mailbox[cs.rookFrom] != NewPiece(Rook, c) {
				return fenError(FieldCastling, p.CastlingRights.String(), ErrCastling,
					"%s has no king or rook on its home square", cs.right)
			}
		}
	}

	if ep := p.EnPassant; ep != NoSquare {
		us := p.SideToMove
		pushed := captureSquare(ep, us)
		if ep.RelativeRank(us) != 5 ||
			!p.IsEmpty(ep) ||
			p.mailbox[pushed] != NewPiece(Pawn, them) ||
			!p.IsEmpty(captureSquare(ep, them)) {
			return fenError(FieldEnPassant, ep.String(), ErrEnPassant, "no pawn could have just double-pushed")
		}
	}
	return nil
}

func (p *Position) placementString() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.mailbox[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// FEN returns the six-field FEN record of the position.
func (p *Position) FEN() string {
	var sb strings.Builder
	sb.WriteString(p.placementString())
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	if p.EnPassant == NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(p.EnPassant.String())
	}
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}
