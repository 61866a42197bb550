package bestmove

import (
	"errors"

	"github.com/discochess/bestmove/internal/pool"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNoPool indicates no engine pool was provided.
	ErrNoPool = errors.New("bestmove: no engine pool provided")

	// ErrClosed indicates the service has been closed.
	ErrClosed = errors.New("bestmove: service closed")

	// ErrInvalidPosition indicates the request's position does not
	// decode to a valid board encoding.
	ErrInvalidPosition = errors.New("bestmove: invalid position")

	// ErrNoLegalMove indicates the position is terminal (checkmate or
	// stalemate); there is no move to return.
	ErrNoLegalMove = errors.New("bestmove: position has no legal move")

	// ErrSearchTimeout indicates the engine did not answer within the
	// search deadline.
	ErrSearchTimeout = errors.New("bestmove: search deadline exceeded")

	// ErrEngine indicates an engine process failure: crash, protocol
	// error, or an answer that failed the legality check.
	ErrEngine = errors.New("bestmove: engine failure")

	// ErrPoolExhausted indicates no engine was available within the
	// pool's waiter-queue bound.
	ErrPoolExhausted = pool.ErrExhausted

	// ErrPoolClosed indicates the engine pool has been shut down.
	ErrPoolClosed = pool.ErrClosed
)
