package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/bestmove"
	"github.com/discochess/bestmove/internal/httpapi"
	statsprom "github.com/discochess/bestmove/internal/stats/prometheus"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the best-move HTTP service",
	Long: `Run the HTTP service. Engine processes are spawned lazily as requests
arrive, up to the pool size.

Endpoints:
  POST /v1/move   {"fen": "...", "rating": 1500}
  GET  /healthz
  GET  /metrics`,
	RunE: runServe,
}

var (
	listenAddr    string
	poolSize      int
	queueDepth    int
	searchTimeout time.Duration
	cacheSize     int
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", envOr("BESTMOVE_LISTEN", ":8080"), "address to listen on")
	serveCmd.Flags().IntVar(&poolSize, "pool-size", 0, "engine processes to run (0 = one per CPU)")
	serveCmd.Flags().IntVar(&queueDepth, "queue-depth", 64, "requests allowed to wait for an engine")
	serveCmd.Flags().DurationVar(&searchTimeout, "search-timeout", 15*time.Second, "per-request search deadline")
	serveCmd.Flags().IntVar(&cacheSize, "cache-size", 1024, "answers to keep in the LRU cache (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	collector := statsprom.New(nil)

	pool, err := bestmove.NewEnginePool(bestmove.EnginePoolConfig{
		BinaryPath: enginePath,
		Size:       poolSize,
		QueueDepth: queueDepth,
		Logger:     log,
		Stats:      collector,
	})
	if err != nil {
		return fmt.Errorf("creating engine pool: %w", err)
	}

	svc, err := bestmove.New(
		bestmove.WithPool(pool),
		bestmove.WithSearchTimeout(searchTimeout),
		bestmove.WithMoveCache(cacheSize),
		bestmove.WithStats(collector),
		bestmove.WithLogger(log.Named("bestmove")),
	)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           httpapi.NewRouter(log.Named("http"), svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", listenAddr), zap.String("engine", enginePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
