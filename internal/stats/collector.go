// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the service.
const (
	// Request metrics.
	MetricRequests      = "bestmove_requests_total"
	MetricMoves         = "bestmove_moves_total"
	MetricTimeouts      = "bestmove_search_timeouts_total"
	MetricEngineErrors  = "bestmove_engine_errors_total"
	MetricSearchSeconds = "bestmove_search_seconds"

	// Response cache metrics.
	MetricCacheHits   = "bestmove_cache_hits_total"
	MetricCacheMisses = "bestmove_cache_misses_total"

	// Engine pool metrics.
	MetricPoolAcquires  = "enginepool_acquires_total"
	MetricPoolExhausted = "enginepool_exhausted_total"
	MetricPoolCreated   = "enginepool_handles_created_total"
	MetricPoolBroken    = "enginepool_handles_broken_total"
	MetricPoolBusy      = "enginepool_busy_handles"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
