// Package uci drives the engine over the Universal Chess Interface protocol.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	store    *storage.AnalysisStore // optional
	position *board.Position

	out   io.Writer
	outMu sync.Mutex
	log   zerolog.Logger

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a protocol handler writing responses to out. store may be nil,
// in which case search results are not persisted.
func New(eng *engine.Engine, store *storage.AnalysisStore, out io.Writer, log zerolog.Logger) *UCI {
	u := &UCI{
		engine:   eng,
		store:    store,
		position: board.NewPosition(),
		out:      out,
		log:      log,
	}
	eng.OnInfo = u.sendInfo
	return u
}

// Run reads commands from in until "quit", the end of input or ctx is done.
// A search still running at that point is stopped and its bestmove printed.
func (u *UCI) Run(ctx context.Context, in io.Reader) error {
	defer u.handleStop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line := <-lines:
			if !u.Execute(line) {
				return nil
			}
		}
	}
}

// Execute handles a single command line. It returns false on "quit".
func (u *UCI) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]
	u.log.Trace().Str("cmd", cmd).Strs("args", args).Msg("command")

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		u.handleStop()
	case "wait":
		u.wait()
	case "quit":
		u.handleStop()
		return false
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		u.printf("%s", u.position)
		if status := gameStatus(u.position); status != "" {
			u.printf("Status: %s\n", status)
		}
	case "eval":
		u.printf("info string eval %d\n", u.engine.Evaluate(u.position))
	case "perft":
		u.handlePerft(args)
	case "analysis":
		u.handleAnalysis()
	default:
		u.printf("info string unknown command %s\n", cmd)
	}
	return true
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	opts := engine.DefaultOptions()
	u.println("id name ChessCore")
	u.println("id author ChessCore developers")
	u.println("")
	u.printf("option name Hash type spin default %d min %d max %d\n", opts.HashMB, engine.MinHashMB, engine.MaxHashMB)
	u.printf("option name Threads type spin default %d min %d max %d\n", opts.Threads, engine.MinThreads, engine.MaxThreads)
	u.println("option name Clear Hash type button")
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// The current position is left untouched when the FEN or any move is invalid.
func (u *UCI) handlePosition(args []string) {
	pos, err := parsePosition(args)
	if err != nil {
		u.log.Warn().Err(err).Msg("position rejected")
		u.printf("info string %v\n", err)
		return
	}
	u.handleStop()
	u.position = pos
	if status := gameStatus(pos); status != "" {
		u.printf("info string %s\n", status)
	}
}

// gameStatus names the rule that ends or allows claiming the game in pos, or
// returns "" while play goes on.
func gameStatus(pos *board.Position) string {
	switch {
	case pos.IsCheckmate():
		return "checkmate"
	case pos.IsStalemate():
		return "stalemate"
	case pos.IsThreefold():
		return "draw by threefold repetition"
	case pos.HalfMoveClock >= 100:
		return "draw by fifty-move rule"
	case pos.IsInsufficientMaterial():
		return "draw by insufficient material"
	}
	return ""
}

var errPositionSyntax = errors.New("uci: expected startpos or fen")

func parsePosition(args []string) (*board.Position, error) {
	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch {
	case len(args) > 0 && args[0] == "startpos":
		pos = board.NewPosition()
	case len(args) > 0 && args[0] == "fen":
		var err error
		if pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " ")); err != nil {
			return nil, err
		}
	default:
		return nil, errPositionSyntax
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := pos.ParseMove(s)
			if err != nil {
				return nil, err
			}
			pos.MakeMove(m)
		}
	}
	return pos, nil
}

// parseGo converts "go" arguments to search limits for pos. Times are in
// milliseconds. "infinite" and a bare "go" search until stopped.
func parseGo(args []string, pos *board.Position) engine.Limits {
	var (
		limits engine.Limits
		clock  engine.Clock
	)

	next := func(i *int) int64 {
		if *i+1 >= len(args) {
			return 0
		}
		*i++
		n, _ := strconv.ParseInt(args[*i], 10, 64)
		return max(n, 0)
	}
	ms := func(i *int) time.Duration {
		return time.Duration(next(i)) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			limits.Depth = int(next(&i))
		case "nodes":
			limits.Nodes = uint64(next(&i))
		case "perft":
			limits.Perft = int(next(&i))
		case "movetime":
			clock.MoveTime = ms(&i)
		case "wtime":
			clock.Time[board.White] = ms(&i)
		case "btime":
			clock.Time[board.Black] = ms(&i)
		case "winc":
			clock.Inc[board.White] = ms(&i)
		case "binc":
			clock.Inc[board.Black] = ms(&i)
		case "movestogo":
			clock.MovesToGo = int(next(&i))
		case "infinite":
			return engine.Limits{}
		}
	}

	limits.Time = clock.Limits(pos).Time
	return limits
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	pos := u.position.Copy()
	limits := parseGo(args, pos)

	if limits.Perft > 0 {
		u.perft(pos, limits.Perft)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	u.log.Debug().
		Int("depth", limits.Depth).
		Uint64("nodes", limits.Nodes).
		Dur("time", limits.Time).
		Str("fen", pos.FEN()).
		Msg("go")

	go func() {
		defer close(u.searchDone)
		result := u.engine.Search(ctx, pos, limits)
		u.printf("bestmove %s\n", result.Move)
		u.save(pos, result)
	}()
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	u.wait()
}

// wait blocks until the running search, if any, has printed its bestmove.
func (u *UCI) wait() {
	if u.searchDone == nil {
		return
	}
	<-u.searchDone
	u.cancel()
	u.cancel, u.searchDone = nil, nil
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d score %s nodes %d nps %d time %d hashfull %d",
		info.Depth, formatScore(info.Score), info.Nodes, info.NPS, info.Time.Milliseconds(), info.HashFull)
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	u.println(sb.String())
}

func formatScore(score int) string {
	if engine.IsMate(score) {
		return fmt.Sprintf("mate %d", engine.MateMoves(score))
	}
	return fmt.Sprintf("cp %d", score)
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}

	u.handleStop()

	key := strings.ToLower(strings.Join(name, " "))
	switch key {
	case "hash", "threads":
		n, err := strconv.Atoi(strings.Join(value, ""))
		if err != nil {
			u.printf("info string invalid value for %s\n", key)
			return
		}
		if key == "hash" {
			u.engine.SetHash(n)
		} else {
			u.engine.SetThreads(n)
		}
	case "clear hash":
		u.engine.Clear()
	default:
		u.printf("info string unknown option %s\n", strings.Join(name, " "))
	}
}

// handlePerft runs "perft <depth>" on the current position.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}
	u.handleStop()
	u.perft(u.position, depth)
}

// perft prints the node count below every root move followed by the total.
func (u *UCI) perft(pos *board.Position, depth int) {
	start := time.Now()
	divide, total := engine.ParallelPerft(pos, depth)
	elapsed := time.Since(start)

	for _, e := range divide {
		u.printf("%s: %d\n", e.Move, e.Nodes)
	}
	u.printf("\nNodes searched: %d\n", total)
	u.log.Info().Int("depth", depth).Uint64("nodes", total).Dur("time", elapsed).Msg("perft")
}

// save records a completed search in the analysis store.
func (u *UCI) save(pos *board.Position, r engine.Result) {
	if u.store == nil || r.Depth == 0 {
		return
	}
	pv := make([]string, len(r.PV))
	for i, m := range r.PV {
		pv[i] = m.String()
	}
	a := storage.Analysis{
		FEN:     pos.FEN(),
		Move:    r.Move.String(),
		Score:   r.Score,
		Depth:   r.Depth,
		Nodes:   r.Nodes,
		PV:      pv,
		Updated: time.Now(),
	}
	if _, err := u.store.Save(pos.Hash, a); err != nil {
		u.log.Error().Err(err).Msg("save analysis")
	}
}

// handleAnalysis prints the stored analysis of the current position.
func (u *UCI) handleAnalysis() {
	if u.store == nil {
		u.println("info string analysis store disabled")
		return
	}
	a, err := u.store.Load(u.position.Hash)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		u.println("info string no analysis")
		return
	case err != nil:
		u.log.Error().Err(err).Msg("load analysis")
		u.printf("info string %v\n", err)
		return
	}
	u.printf("info string analysis depth %d score %s nodes %d bestmove %s pv %s\n",
		a.Depth, formatScore(a.Score), a.Nodes, a.Move, strings.Join(a.PV, " "))
}
