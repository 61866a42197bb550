// Package pool manages a fixed-size set of exclusively-owned resources,
// built for external engine processes: checkout suspends in FIFO order
// behind a bounded waiter queue, recycling resets or destroys the
// resource, and broken resources are replaced lazily on demand.
package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/bestmove/internal/stats"
)

// Sentinel errors for well-defined pool conditions.
var (
	// ErrClosed indicates the pool has been shut down.
	ErrClosed = errors.New("pool: closed")

	// ErrExhausted indicates no resource was idle and the waiter queue
	// was already at its configured depth.
	ErrExhausted = errors.New("pool: waiter queue full")
)

// Outcome describes the state a resource ended a checkout in.
type Outcome int

const (
	// OutcomeGood means the resource ended idle and can be reset and reused.
	OutcomeGood Outcome = iota

	// OutcomeBroken means the resource must be destroyed, never reused.
	OutcomeBroken
)

// Resource is the pooled object. Reset returns it to a baseline state
// between checkouts; Close destroys it.
type Resource interface {
	Reset() error
	Close() error
}

// Factory creates a new resource. It is called lazily: on first demand
// and whenever a broken resource needs replacing.
type Factory[T Resource] func(ctx context.Context) (T, error)

// Config configures a Pool.
type Config struct {
	// Size is the maximum number of live resources. Default: one per CPU.
	Size int

	// QueueDepth is the maximum number of callers allowed to wait for a
	// resource; further callers fail with ErrExhausted. Default 64.
	QueueDepth int

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Stats defaults to a no-op collector.
	Stats stats.Collector
}

type acquireResult[T Resource] struct {
	res T
	err error
}

type waiter[T Resource] struct {
	ch chan acquireResult[T]
}

// Pool hands out exclusive leases on up to Size resources.
// A Pool is safe for concurrent use by multiple goroutines.
type Pool[T Resource] struct {
	factory    Factory[T]
	size       int
	queueDepth int
	log        *zap.Logger
	stats      stats.Collector

	mu      sync.Mutex
	idle    []T
	live    int // resources that exist or are being created
	waiters []*waiter[T]
	closed  bool
}

// New creates a pool around the given factory. No resources are created
// up front; creation happens on first acquire.
func New[T Resource](factory Factory[T], cfg Config) (*Pool[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("pool: factory required")
	}
	if cfg.Size <= 0 {
		cfg.Size = runtime.NumCPU()
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 64
	}
	if cfg.QueueDepth < 0 {
		cfg.QueueDepth = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewNoop()
	}
	return &Pool[T]{
		factory:    factory,
		size:       cfg.Size,
		queueDepth: cfg.QueueDepth,
		log:        cfg.Logger,
		stats:      cfg.Stats,
	}, nil
}

// Size returns the pool's resource capacity.
func (p *Pool[T]) Size() int { return p.size }

// Acquire transfers exclusive ownership of a resource to the caller.
// When none is idle and the pool is at capacity, the caller suspends in
// FIFO order behind at most QueueDepth other waiters. The returned
// lease must be released exactly once on every path.
func (p *Pool[T]) Acquire(ctx context.Context) (*Lease[T], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}

	if n := len(p.idle); n > 0 {
		res := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.gaugeLocked()
		p.mu.Unlock()
		p.stats.IncCounter(stats.MetricPoolAcquires, 1)
		return newLease(p, res), nil
	}

	if p.live < p.size {
		p.live++
		p.gaugeLocked()
		p.mu.Unlock()
		res, err := p.create(ctx)
		if err != nil {
			p.failCreate()
			return nil, err
		}
		p.stats.IncCounter(stats.MetricPoolAcquires, 1)
		return newLease(p, res), nil
	}

	if len(p.waiters) >= p.queueDepth {
		p.mu.Unlock()
		p.stats.IncCounter(stats.MetricPoolExhausted, 1)
		return nil, ErrExhausted
	}

	w := &waiter[T]{ch: make(chan acquireResult[T], 1)}
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	select {
	case r := <-w.ch:
		if r.err != nil {
			return nil, r.err
		}
		p.stats.IncCounter(stats.MetricPoolAcquires, 1)
		return newLease(p, r.res), nil
	case <-ctx.Done():
		p.mu.Lock()
		removed := p.removeWaiterLocked(w)
		p.mu.Unlock()
		if removed {
			return nil, ctx.Err()
		}
		// A result was already (or is about to be) handed to this
		// waiter; reclaim it so the resource is not stranded.
		if r := <-w.ch; r.err == nil {
			p.putBack(r.res)
		}
		return nil, ctx.Err()
	}
}

// Close shuts the pool down: pending and future acquisitions fail with
// ErrClosed, idle resources are destroyed, and leased resources are
// destroyed as they are released.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.closed = true
	waiters := p.waiters
	p.waiters = nil
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	p.gaugeLocked()
	p.mu.Unlock()

	for _, w := range waiters {
		w.ch <- acquireResult[T]{err: ErrClosed}
	}

	var errs error
	for _, res := range idle {
		if err := res.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	p.log.Debug("pool closed", zap.Int("destroyed", len(idle)), zap.Int("leased", p.liveCount()))
	return errs
}

func (p *Pool[T]) create(ctx context.Context) (T, error) {
	res, err := p.factory(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("pool: creating resource: %w", err)
	}
	p.stats.IncCounter(stats.MetricPoolCreated, 1)
	return res, nil
}

// release returns a resource after a checkout. Called exactly once per
// lease, via Lease.Release.
func (p *Pool[T]) release(res T, outcome Outcome) {
	if outcome == OutcomeGood {
		if err := res.Reset(); err != nil {
			p.log.Warn("resource reset failed, destroying", zap.Error(err))
			outcome = OutcomeBroken
		}
	}
	if outcome == OutcomeBroken {
		p.destroy(res)
		return
	}
	p.putBack(res)
}

// putBack hands a reset resource to the oldest waiter or returns it to
// the idle set.
func (p *Pool[T]) putBack(res T) {
	p.mu.Lock()
	if p.closed {
		p.live--
		p.gaugeLocked()
		p.mu.Unlock()
		_ = res.Close()
		return
	}
	if len(p.waiters) > 0 {
		w := p.popWaiterLocked()
		w.ch <- acquireResult[T]{res: res}
		p.mu.Unlock()
		return
	}
	p.idle = append(p.idle, res)
	p.gaugeLocked()
	p.mu.Unlock()
}

// destroy closes a broken resource. The slot it occupied is refilled
// lazily, except that a queued waiter triggers replacement immediately
// so it is not left waiting on capacity that no longer exists.
func (p *Pool[T]) destroy(res T) {
	_ = res.Close()
	p.stats.IncCounter(stats.MetricPoolBroken, 1)

	p.mu.Lock()
	p.live--
	if !p.closed && len(p.waiters) > 0 && p.live < p.size {
		w := p.popWaiterLocked()
		p.live++
		p.gaugeLocked()
		p.mu.Unlock()
		go p.createFor(w)
		return
	}
	p.gaugeLocked()
	p.mu.Unlock()
}

// createFor replaces a destroyed resource on behalf of a queued waiter.
func (p *Pool[T]) createFor(w *waiter[T]) {
	res, err := p.create(context.Background())
	if err != nil {
		p.failCreate()
		w.ch <- acquireResult[T]{err: err}
		return
	}
	w.ch <- acquireResult[T]{res: res}
}

// failCreate settles the slot reserved for a creation that failed. When
// a caller is queued, the slot transfers to the oldest waiter and
// creation restarts on its behalf, so queued callers are never stranded
// behind capacity that nobody refills. Otherwise the slot is freed for
// the next acquire to retry lazily.
func (p *Pool[T]) failCreate() {
	p.mu.Lock()
	if !p.closed && len(p.waiters) > 0 {
		w := p.popWaiterLocked()
		p.gaugeLocked()
		p.mu.Unlock()
		go p.createFor(w)
		return
	}
	p.live--
	p.gaugeLocked()
	p.mu.Unlock()
}

func (p *Pool[T]) popWaiterLocked() *waiter[T] {
	w := p.waiters[0]
	p.waiters = p.waiters[1:]
	return w
}

func (p *Pool[T]) removeWaiterLocked(w *waiter[T]) bool {
	for i, q := range p.waiters {
		if q == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Pool[T]) liveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// gaugeLocked publishes the busy-handle gauge. Callers hold p.mu.
func (p *Pool[T]) gaugeLocked() {
	p.stats.SetGauge(stats.MetricPoolBusy, int64(p.live-len(p.idle)))
}
