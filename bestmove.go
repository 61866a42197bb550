// Package bestmove serves chess-move requests by delegating position
// analysis to a pool of external UCI engine processes, selecting engine
// strength from the requested rating and translating the engine's
// answer into a structured, rule-validated move.
//
// Example usage:
//
//	pool, err := bestmove.NewEnginePool(bestmove.EnginePoolConfig{
//	    BinaryPath: "/usr/games/stockfish",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svc, err := bestmove.New(bestmove.WithPool(pool))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	mv, err := svc.BestMove(ctx, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1500)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s (%s)\n", mv.SAN, mv.BestMove)
package bestmove

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/discochess/bestmove/internal/engine"
	"github.com/discochess/bestmove/internal/pool"
	"github.com/discochess/bestmove/internal/rules"
	"github.com/discochess/bestmove/internal/stats"
	"github.com/discochess/bestmove/internal/strength"
)

// Engine is the per-checkout surface of a pooled engine process. The
// service owns an Engine exclusively from acquire until release.
type Engine interface {
	Configure(skillLevel, multiPV int) error
	SetPosition(fen string) error
	Search(ctx context.Context, depth int) (engine.Answer, error)
	Reset() error
	Close() error
}

// Pool hands out exclusive leases on engine processes.
type Pool = pool.Pool[Engine]

// EnginePoolConfig configures a pool of engine processes.
type EnginePoolConfig struct {
	// BinaryPath is the engine executable to spawn.
	BinaryPath string

	// Size is the number of engine processes. Default: one per CPU.
	Size int

	// QueueDepth bounds how many requests may wait for an engine before
	// further requests fail fast. Default 64.
	QueueDepth int

	// ReadyTimeout bounds engine startup and readiness waits.
	ReadyTimeout time.Duration

	// StopGrace bounds the wait for a search to wind down after its
	// deadline expires.
	StopGrace time.Duration

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Stats defaults to a no-op collector.
	Stats stats.Collector
}

// NewEnginePool creates a process pool spawning engines from the
// configured binary. Processes are started lazily on first demand.
func NewEnginePool(cfg EnginePoolConfig) (*Pool, error) {
	if cfg.BinaryPath == "" {
		return nil, fmt.Errorf("bestmove: engine binary path required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	factory := func(ctx context.Context) (Engine, error) {
		return engine.New(engine.Config{
			Path:         cfg.BinaryPath,
			ReadyTimeout: cfg.ReadyTimeout,
			StopGrace:    cfg.StopGrace,
			Logger:       cfg.Logger.Named("engine"),
		})
	}
	return pool.New(factory, pool.Config{
		Size:       cfg.Size,
		QueueDepth: cfg.QueueDepth,
		Logger:     cfg.Logger.Named("enginepool"),
		Stats:      cfg.Stats,
	})
}

// cacheKey identifies a cached answer: same position, same strength.
type cacheKey struct {
	fen   string
	skill int
	depth int
}

// Service orchestrates best-move requests over an engine pool.
// A Service is safe for concurrent use by multiple goroutines.
type Service struct {
	pool    *Pool
	cache   *lru.Cache[cacheKey, Move]
	timeout time.Duration
	stats   stats.Collector
	logger  *zap.Logger
	closed  atomic.Bool
}

// New creates a new Service with the given options.
// An engine pool is required; see WithPool.
func New(opts ...Option) (*Service, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.pool == nil {
		return nil, ErrNoPool
	}

	s := &Service{
		pool:    cfg.pool,
		timeout: cfg.searchTimeout,
		stats:   cfg.stats,
		logger:  cfg.logger,
	}

	if cfg.cacheSize > 0 {
		cache, err := lru.New[cacheKey, Move](cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("bestmove: creating move cache: %w", err)
		}
		s.cache = cache
	}

	s.logger.Debug("service initialized",
		zap.Int("poolSize", s.pool.Size()),
		zap.Duration("searchTimeout", s.timeout),
		zap.Int("cacheSize", cfg.cacheSize),
	)
	return s, nil
}

// BestMove analyzes the position at the strength derived from rating and
// returns the engine's validated choice.
//
// The per-request lifecycle is: validate the position locally, acquire
// an engine lease, configure strength, load the position, search under
// the deadline, check the answer's legality, release the lease. The
// lease is released exactly once on every path; any step that leaves
// the process in an unknown state releases it as broken so the pool
// destroys rather than reuses it.
func (s *Service) BestMove(ctx context.Context, fen string, rating int) (*Move, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	s.stats.IncCounter(stats.MetricRequests, 1)

	pos, err := rules.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	profile := strength.FromRating(rating)
	key := cacheKey{fen: fen, skill: profile.SkillLevel, depth: profile.Depth}
	if s.cache != nil {
		if mv, ok := s.cache.Get(key); ok {
			s.stats.IncCounter(stats.MetricCacheHits, 1)
			return &mv, nil
		}
		s.stats.IncCounter(stats.MetricCacheMisses, 1)
	}

	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		// A request whose context expires while queued for an engine is
		// the caller's deadline at work, not a service fault.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.stats.IncCounter(stats.MetricTimeouts, 1)
			return nil, fmt.Errorf("%w: waiting for engine: %v", ErrSearchTimeout, err)
		}
		return nil, err
	}
	outcome := pool.OutcomeBroken
	defer func() { lease.Release(outcome) }()

	eng := lease.Resource()
	if err := eng.Configure(profile.SkillLevel, 1); err != nil {
		s.stats.IncCounter(stats.MetricEngineErrors, 1)
		return nil, fmt.Errorf("%w: configuring: %v", ErrEngine, err)
	}
	// The position already passed local validation; a failure here means
	// the process itself is in trouble.
	if err := eng.SetPosition(fen); err != nil {
		s.stats.IncCounter(stats.MetricEngineErrors, 1)
		return nil, fmt.Errorf("%w: loading position: %v", ErrEngine, err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	ans, err := eng.Search(searchCtx, profile.Depth)
	s.stats.ObserveHistogram(stats.MetricSearchSeconds, time.Since(start).Seconds())
	if err != nil {
		return nil, s.searchError(err, &outcome)
	}

	desc, err := rules.Describe(pos, ans.BestMove)
	if err != nil {
		// The engine answered with a move that is illegal in the
		// position it was given: the protocol stream is desynchronized
		// and the handle cannot be trusted again.
		s.stats.IncCounter(stats.MetricEngineErrors, 1)
		s.logger.Error("engine answer failed legality check",
			zap.String("fen", fen),
			zap.String("bestMove", ans.BestMove),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	outcome = pool.OutcomeGood
	mv := Move{
		BestMove:  strings.ToLower(ans.BestMove),
		Score:     ans.Score(),
		From:      desc.From,
		To:        desc.To,
		Piece:     desc.Piece,
		Captured:  desc.Captured,
		Promotion: desc.Promotion,
		SAN:       desc.SAN,
	}
	if s.cache != nil {
		s.cache.Add(key, mv)
	}
	s.stats.IncCounter(stats.MetricMoves, 1)
	return &mv, nil
}

// searchError classifies a failed search and decides the lease outcome.
func (s *Service) searchError(err error, outcome *pool.Outcome) error {
	switch {
	case errors.Is(err, engine.ErrNoMove):
		// Terminal position; the engine is idle and fine.
		*outcome = pool.OutcomeGood
		return ErrNoLegalMove
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The stop handshake completed, so the process is idle again.
		*outcome = pool.OutcomeGood
		s.stats.IncCounter(stats.MetricTimeouts, 1)
		return fmt.Errorf("%w: %v", ErrSearchTimeout, err)
	case errors.Is(err, engine.ErrStopTimeout):
		// Still computing past the grace period; destroy the handle.
		s.stats.IncCounter(stats.MetricTimeouts, 1)
		return fmt.Errorf("%w: %v", ErrSearchTimeout, err)
	default:
		s.stats.IncCounter(stats.MetricEngineErrors, 1)
		return fmt.Errorf("%w: %v", ErrEngine, err)
	}
}

// Close shuts the service down and tears down its engine pool.
// After Close, the service should not be used.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return s.pool.Close()
}
