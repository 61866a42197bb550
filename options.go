package bestmove

import (
	"time"

	"go.uber.org/zap"

	"github.com/discochess/bestmove/internal/stats"
)

// Option configures a Service.
type Option interface {
	apply(*options)
}

// options holds the service configuration.
type options struct {
	pool          *Pool
	searchTimeout time.Duration
	cacheSize     int
	stats         stats.Collector
	logger        *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		searchTimeout: 15 * time.Second,
		stats:         stats.NewNoop(),
		logger:        zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithPool sets the engine pool to draw processes from. Required.
func WithPool(p *Pool) Option {
	return optionFunc(func(o *options) {
		o.pool = p
	})
}

// WithSearchTimeout sets the per-request search deadline.
// Default is 15 seconds.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		if d > 0 {
			o.searchTimeout = d
		}
	})
}

// WithMoveCache enables an LRU cache of the n most recent answers,
// keyed by position and strength. Disabled by default.
func WithMoveCache(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
