// Package config holds the ingestion core's tunables, in the same
// "struct of struct-of-fields, one DefaultConfig() literal" shape the
// storage engine this core was carved out of uses for its own config.
package config

import (
	"runtime"
	"time"
)

// Config is the ingestion core's full configuration.
type Config struct {
	Parser  ParserConfig
	Sched   SchedulerConfig
	QueryID QueryIDConfig
}

// ParserConfig bounds term parsing, adapted from the storage engine's
// own QueryConfig (which bounded query *execution*; this bounds query
// *ingestion*). Only QueryLogBackend is read in this module (by
// querylog.Open); termparser does not enforce the depth and size bounds,
// and nothing clamps a row limit to MaxQueryLimit.
type ParserConfig struct {
	MaxTermDepth    int        // Maximum nesting depth of a term tree (0 = unbounded).
	MaxArraySize    int        // Maximum elements in an args array or DATUM array (0 = unbounded).
	MaxObjectSize   int        // Maximum members in an optargs object or DATUM object (0 = unbounded).
	MaxQueryLimit   int        // Upper bound a client-supplied row limit optarg is clamped to.
	QueryLogBackend LogBackend // Which querylog.Log implementation a host should construct.
}

// LogBackend selects a querylog storage implementation.
type LogBackend int

const (
	LogBackendNone LogBackend = iota
	LogBackendSQLite
	LogBackendBolt
)

// SchedulerConfig configures the ants-backed query worker pool that
// dispatches a parsed QueryParams to the (external) evaluator.
type SchedulerConfig struct {
	MaxConcurrentQueries int           // Ants pool capacity (0 = auto-scale).
	WorkerExpiry         time.Duration // Idle goroutine expiry for the ants pool.
	PreAlloc             bool          // Pre-allocate the ants pool's goroutine queue.
	QueryTimeout         time.Duration // Per-query execution timeout; queryworkers.Pool does not read or enforce it.
}

// QueryIDConfig configures the per-connection QueryIdRegistry.
type QueryIDConfig struct {
	// OutstandingWarnThreshold is the outstanding-list size past which a
	// client is likely issuing many noreply queries without ever
	// noreply_wait-ing. queryid.Registry does not read it and logs
	// nothing when the size is exceeded.
	OutstandingWarnThreshold int
}

// DefaultConfig returns the ingestion core's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			MaxTermDepth:    256,
			MaxArraySize:    0, // Term-level parsing always uses unlimited datum limits per spec.
			MaxObjectSize:   0,
			MaxQueryLimit:   10000,
			QueryLogBackend: LogBackendNone,
		},
		Sched: SchedulerConfig{
			MaxConcurrentQueries: 4 * runtime.NumCPU(),
			WorkerExpiry:         time.Second,
			PreAlloc:             false,
			QueryTimeout:         30 * time.Second,
		},
		QueryID: QueryIDConfig{
			OutstandingWarnThreshold: 10000,
		},
	}
}
