package board

// Magic bitboards for sliding piece attacks. Each square owns a slice of a
// shared table; the slot for an occupancy is found by multiplying the relevant
// blockers by the square's magic and keeping the top bits.

// Magic holds the lookup parameters for one square.
type Magic struct {
	Mask   Bitboard // relevant blockers, board edges excluded
	Magic  uint64
	Shift  uint8
	Offset uint32
}

func (m *Magic) index(occupied Bitboard) uint32 {
	return m.Offset + uint32((uint64(occupied&m.Mask)*m.Magic)>>m.Shift)
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	bishopTable []Bitboard
	rookTable   []Bitboard
)

// Seed magics. Each is checked against every blocker subset at startup and
// replaced by a searched one if it maps two occupancies with different attack
// sets to the same slot.
var bishopSeeds = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookSeeds = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

var (
	rookDirections   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func initMagics() {
	rng := newPRNG(0x2545F4914F6CDD1D)
	bishopTable = buildMagics(&bishopMagics, &bishopSeeds, bishopDirections, rng)
	rookTable = buildMagics(&rookMagics, &rookSeeds, rookDirections, rng)
}

// buildMagics fills magics for every square and returns the shared table.
func buildMagics(magics *[64]Magic, seeds *[64]uint64, dirs [4][2]int, rng *prng) []Bitboard {
	var table []Bitboard
	for sq := A1; sq <= H8; sq++ {
		mask := relevantMask(sq, dirs)
		bits := mask.PopCount()

		var occupancies, attacks []Bitboard
		mask.ForEachSubset(func(occ Bitboard) {
			occupancies = append(occupancies, occ)
			attacks = append(attacks, slidingAttacks(sq, occ, dirs))
		})

		m := Magic{
			Mask:   mask,
			Magic:  seeds[sq],
			Shift:  uint8(64 - bits),
			Offset: uint32(len(table)),
		}
		slots := make([]Bitboard, 1<<bits)
		for !fillSlots(&m, occupancies, attacks, slots) {
			m.Magic = rng.sparse()
		}

		magics[sq] = m
		table = append(table, slots...)
	}
	return table
}

// fillSlots writes every occupancy's attack set into slots and reports false
// on a destructive collision. An empty attack set never occurs for a slider,
// so a zero slot means unused.
func fillSlots(m *Magic, occupancies, attacks []Bitboard, slots []Bitboard) bool {
	clear(slots)
	for i, occ := range occupancies {
		idx := (uint64(occ) * m.Magic) >> m.Shift
		switch slots[idx] {
		case Empty:
			slots[idx] = attacks[i]
		case attacks[i]:
		default:
			return false
		}
	}
	return true
}

// relevantMask returns the blocker squares that can change the attack set
// from sq: every ray square except the last one before the edge.
func relevantMask(sq Square, dirs [4][2]int) Bitboard {
	var mask Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f+d[0] >= 0 && f+d[0] < 8 && r+d[1] >= 0 && r+d[1] < 8 {
			mask |= SquareBB(NewSquare(f, r))
			f += d[0]
			r += d[1]
		}
	}
	return mask
}

// slidingAttacks walks each ray until it leaves the board or hits a blocker,
// which is included.
func slidingAttacks(sq Square, occupied Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			s := SquareBB(NewSquare(f, r))
			attacks |= s
			if occupied&s != 0 {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}
