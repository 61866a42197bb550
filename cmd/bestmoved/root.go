package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags.
	enginePath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "bestmoved",
	Short: "Best-move service over a pool of UCI engine processes",
	Long: `Bestmoved answers best-move queries for chess positions by delegating
analysis to a pool of external UCI engine processes. Engine strength is
derived from the requested player rating, so a 1200-rated caller gets a
1200-strength answer.

Examples:
  # Query a single position
  bestmoved move "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" --rating 1500

  # Run the HTTP service
  bestmoved serve --listen :8080`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&enginePath, "engine", "e", envOr("STOCKFISH_PATH", "stockfish"), "UCI engine binary to spawn")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
