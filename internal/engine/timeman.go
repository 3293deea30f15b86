package engine

import (
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// Clock contains the time control parameters of a go command.
type Clock struct {
	Time      [2]time.Duration // remaining time for each color
	Inc       [2]time.Duration // increment per move
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
}

// Budget returns the time to spend on this move, or 0 when the clock sets no
// limit. ply is the current game ply (half-move number).
func (c Clock) Budget(us board.Color, ply int) time.Duration {
	// Fixed move time mode
	if c.MoveTime > 0 {
		return c.MoveTime
	}

	timeLeft := c.Time[us]
	if timeLeft <= 0 {
		return 0
	}
	inc := c.Inc[us]

	// Sudden death: expect fewer remaining moves as the game goes on
	mtg := c.MovesToGo
	if mtg <= 0 {
		mtg = clamp(50-ply/4, 10, 50)
	}

	optimum := timeLeft/time.Duration(mtg) + inc*9/10

	// Slight reduction for very early moves
	if ply < 8 {
		optimum = optimum * 85 / 100
	}

	// The search stops hard at the budget, so never plan past 80% of what
	// is left.
	budget := min(optimum, timeLeft*8/10)

	return max(budget, 10*time.Millisecond)
}

// Limits converts the clock into search limits for the side to move.
func (c Clock) Limits(pos *board.Position) Limits {
	return Limits{Time: c.Budget(pos.SideToMove, pos.Ply())}
}
