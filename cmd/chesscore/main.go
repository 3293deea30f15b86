// Command chesscore is a UCI chess engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	perft      = flag.Int("perft", 0, "run perft to this depth on -fen and exit")
	fen        = flag.String("fen", board.StartFEN, "position for -perft")
	hash       = flag.Int("hash", engine.DefaultOptions().HashMB, "transposition table size in MB")
	threads    = flag.Int("threads", engine.DefaultOptions().Threads, "search threads")
	store      = flag.Bool("store", false, "persist search results in the analysis store")
	storeDir   = flag.String("store-dir", "", "analysis store directory (default: per-user data dir)")
	logLevel   = flag.String("log-level", "warn", "log level: trace, debug, info, warn, error")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level: %v\n", err)
		os.Exit(2)
	}
	// stdout belongs to the protocol
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("chesscore")
		os.Exit(1)
	}
}

// run does the work of main so that deferred cleanup, the CPU profile in
// particular, happens before the process exits.
func run(log zerolog.Logger) error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	if *perft > 0 {
		return runPerft(os.Stdout, *fen, *perft)
	}

	eng := engine.NewEngine(engine.Options{HashMB: *hash, Threads: *threads}, log)

	var analysis *storage.AnalysisStore
	if *store {
		var err error
		if *storeDir != "" {
			analysis, err = storage.Open(*storeDir)
		} else {
			analysis, err = storage.OpenDefault()
		}
		if err != nil {
			log.Error().Err(err).Msg("analysis store disabled")
			analysis = nil
		} else {
			defer analysis.Close()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	protocol := uci.New(eng, analysis, os.Stdout, log)
	if err := protocol.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func runPerft(w io.Writer, fen string, depth int) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}

	start := time.Now()
	divide, total := engine.ParallelPerft(pos, depth)
	elapsed := time.Since(start)

	for _, e := range divide {
		fmt.Fprintf(w, "%s: %d\n", e.Move, e.Nodes)
	}
	fmt.Fprintf(w, "\nNodes: %d\nTime: %v\n", total, elapsed)
	if elapsed > 0 {
		fmt.Fprintf(w, "NPS: %.0f\n", float64(total)/elapsed.Seconds())
	}
	return nil
}
