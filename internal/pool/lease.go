package pool

import "sync/atomic"

// Lease is the scoped-ownership guard for a checked-out resource. The
// holder is the resource's only user until Release is called.
type Lease[T Resource] struct {
	pool     *Pool[T]
	res      T
	released atomic.Bool
}

func newLease[T Resource](p *Pool[T], res T) *Lease[T] {
	return &Lease[T]{pool: p, res: res}
}

// Resource returns the leased resource.
func (l *Lease[T]) Resource() T { return l.res }

// Release hands the resource back with the given outcome. Only the
// first call takes effect, so callers can defer a broken-outcome
// release and still upgrade to a good one on the success path.
func (l *Lease[T]) Release(outcome Outcome) {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.release(l.res, outcome)
}
