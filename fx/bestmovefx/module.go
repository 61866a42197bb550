// Package bestmovefx provides an fx module for a best-move service
// backed by a pool of engine processes.
package bestmovefx

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/bestmove"
	"github.com/discochess/bestmove/internal/httpapi"
	"github.com/discochess/bestmove/internal/stats"
	statsprom "github.com/discochess/bestmove/internal/stats/prometheus"
)

// Config holds the engine and service settings the module needs.
// The embedding application provides it with fx.Supply.
type Config struct {
	// EngineBinary is the UCI engine executable to spawn.
	EngineBinary string

	// PoolSize is the number of engine processes. Zero means one per CPU.
	PoolSize int

	// QueueDepth bounds requests waiting for an engine.
	QueueDepth int

	// SearchTimeout is the per-request search deadline.
	SearchTimeout time.Duration

	// CacheSize enables an answer cache when positive.
	CacheSize int
}

// Module provides a best-move service and its HTTP router.
// Requires a *zap.Logger and a Config to be provided.
var Module = fx.Module("bestmove",
	fx.Provide(
		newStatsCollector,
		newEnginePool,
		newService,
		newRouter,
	),
)

func newStatsCollector() stats.Collector {
	return statsprom.New(nil)
}

// PoolParams holds dependencies for creating the engine pool.
type PoolParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

func newEnginePool(p PoolParams) (*bestmove.Pool, error) {
	return bestmove.NewEnginePool(bestmove.EnginePoolConfig{
		BinaryPath: p.Config.EngineBinary,
		Size:       p.Config.PoolSize,
		QueueDepth: p.Config.QueueDepth,
		Logger:     p.Logger,
		Stats:      p.Collector,
	})
}

// Params holds dependencies for creating the service.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Pool      *bestmove.Pool
	Lifecycle fx.Lifecycle
}

// Result holds the provided service.
type Result struct {
	fx.Out

	Service *bestmove.Service
}

func newService(p Params) (Result, error) {
	opts := []bestmove.Option{
		bestmove.WithPool(p.Pool),
		bestmove.WithStats(p.Collector),
		bestmove.WithLogger(p.Logger.Named("bestmove")),
	}
	if p.Config.SearchTimeout > 0 {
		opts = append(opts, bestmove.WithSearchTimeout(p.Config.SearchTimeout))
	}
	if p.Config.CacheSize > 0 {
		opts = append(opts, bestmove.WithMoveCache(p.Config.CacheSize))
	}

	svc, err := bestmove.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return svc.Close()
		},
	})

	return Result{Service: svc}, nil
}

func newRouter(log *zap.Logger, svc *bestmove.Service) http.Handler {
	return httpapi.NewRouter(log.Named("http"), svc)
}
