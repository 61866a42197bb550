package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/bestmove"
	statslogger "github.com/discochess/bestmove/internal/stats/logger"
)

var moveCmd = &cobra.Command{
	Use:   "move [FEN]",
	Short: "Query the best move for a single position",
	Long: `Query the best move for a chess position given in FEN notation,
spawning a single engine process for the duration of the query.

Examples:
  # Starting position at club strength
  bestmoved move "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" --rating 1500

  # Full strength
  bestmoved move "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3" --rating 3000`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

var (
	rating     int
	outputJSON bool
	showTiming bool
	moveWait   time.Duration
)

func init() {
	moveCmd.Flags().IntVar(&rating, "rating", 1500, "player rating to match engine strength to")
	moveCmd.Flags().BoolVar(&outputJSON, "json", false, "output result as JSON")
	moveCmd.Flags().BoolVar(&showTiming, "timing", false, "show search timing")
	moveCmd.Flags().DurationVar(&moveWait, "search-timeout", 15*time.Second, "search deadline")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	fen := args[0]

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Metrics go to the log; --verbose makes them visible.
	collector := statslogger.New(log.Named("bestmove.stats"))

	pool, err := bestmove.NewEnginePool(bestmove.EnginePoolConfig{
		BinaryPath: enginePath,
		Size:       1,
		Logger:     log,
		Stats:      collector,
	})
	if err != nil {
		return fmt.Errorf("creating engine pool: %w", err)
	}

	svc, err := bestmove.New(
		bestmove.WithPool(pool),
		bestmove.WithSearchTimeout(moveWait),
		bestmove.WithStats(collector),
		bestmove.WithLogger(log.Named("bestmove")),
	)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	start := time.Now()
	mv, err := svc.BestMove(context.Background(), fen, rating)
	if err != nil {
		switch {
		case errors.Is(err, bestmove.ErrInvalidPosition):
			return fmt.Errorf("invalid position: %w", err)
		case errors.Is(err, bestmove.ErrNoLegalMove):
			return fmt.Errorf("position has no legal move (checkmate or stalemate)")
		case errors.Is(err, bestmove.ErrSearchTimeout):
			return fmt.Errorf("engine did not answer within %s", moveWait)
		default:
			return fmt.Errorf("query failed: %w", err)
		}
	}
	elapsed := time.Since(start)

	if outputJSON {
		return printMoveJSON(mv, elapsed)
	}
	printMoveText(mv, elapsed)
	return nil
}

func printMoveText(mv *bestmove.Move, elapsed time.Duration) {
	fmt.Printf("Move:  %s (%s)\n", mv.SAN, mv.BestMove)
	fmt.Printf("Piece: %s %s -> %s\n", mv.Piece, mv.From, mv.To)
	if mv.Captured != "" {
		fmt.Printf("Takes: %s\n", mv.Captured)
	}
	if mv.Promotion != "" {
		fmt.Printf("Promo: %s\n", mv.Promotion)
	}
	fmt.Printf("Score: %d\n", mv.Score)
	if showTiming {
		fmt.Printf("Time:  %s\n", elapsed)
	}
}

func printMoveJSON(mv *bestmove.Move, elapsed time.Duration) error {
	out := struct {
		*bestmove.Move
		ElapsedMS int64 `json:"elapsed_ms,omitempty"`
	}{Move: mv}
	if showTiming {
		out.ElapsedMS = elapsed.Milliseconds()
	}
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(out)
}
