// Package queryworkers dispatches parsed queries to an external
// evaluator on a bounded goroutine pool. It replaces the storage
// engine's own hand-rolled per-database round-robin scheduler with an
// ants pool: this core has no per-database queues to be fair across
// (that fairness concern belonged to the storage engine, not to query
// ingestion), so all that is left of the original shape is "bounded
// worker pool plus backpressure signaling", which ants already
// provides. A noreply query's id stays outstanding in its registry
// until the dispatched job finishes; since the registry may only be
// mutated from its owning goroutine, a worker signals completion on
// Pool.Completions rather than releasing the id itself, leaving the
// actual Release call to whoever owns the registry.
package queryworkers

import (
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kartikbazzad/queryhost/internal/config"
	"github.com/kartikbazzad/queryhost/internal/logger"
	"github.com/kartikbazzad/queryhost/internal/queryid"
	"github.com/kartikbazzad/queryhost/internal/queryparams"
	"github.com/kartikbazzad/queryhost/internal/term"
)

// ErrPoolStopped is returned by Submit after Stop has been called.
var ErrPoolStopped = errors.New("queryworkers: pool stopped")

// Job is one parsed query awaiting evaluation: its envelope, the arena
// backing its term tree, and (for a noreply query, which keeps its id
// outstanding until completion) the registry that allocated
// Params.QueryID. A worker hands the job to the evaluator, then frees
// the arena exactly once, regardless of whether evaluation succeeded.
type Job struct {
	Params   queryparams.Params
	Arena    *term.Arena
	Registry *queryid.Registry
}

// Evaluator consumes one parsed Job. It is the external collaborator
// this core hands queries off to; queryworkers only owns scheduling.
type Evaluator func(Job)

// Completion reports that a retained query id's job has finished.
// Registry.Release must be called on the registry's owning goroutine —
// its thread-affinity model forbids any other caller — so a worker
// goroutine cannot release the id itself. Completions are handed off
// here instead; the registry's owner drains Pool.Completions and
// performs the actual release.
type Completion struct {
	Registry *queryid.Registry
	QueryID  queryid.ID
}

// Pool dispatches Jobs to an Evaluator on a bounded ants goroutine
// pool.
type Pool struct {
	ants        *ants.Pool
	evaluate    Evaluator
	log         *logger.Logger
	mu          sync.Mutex
	stopped     bool
	completions chan Completion
}

// completionBacklog bounds how many finished noreply jobs can await
// the registry owner's Release call before a worker's completion
// signal is dropped (logged, not silently lost) rather than blocking
// the worker indefinitely.
const completionBacklog = 1024

// New creates a query worker pool sized and tuned from cfg, dispatching
// every submitted Job to evaluate.
func New(cfg config.SchedulerConfig, evaluate Evaluator, log *logger.Logger) (*Pool, error) {
	size := cfg.MaxConcurrentQueries
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}

	opts := []ants.Option{
		ants.WithExpiryDuration(cfg.WorkerExpiry),
		ants.WithPreAlloc(cfg.PreAlloc),
		ants.WithNonblocking(true), // Submit returns ants.ErrPoolOverload instead of blocking
	}

	p, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, err
	}

	return &Pool{ants: p, evaluate: evaluate, log: log, completions: make(chan Completion, completionBacklog)}, nil
}

// Completions returns the channel a registry's owning goroutine must
// drain, calling Registry.Release(c.QueryID) on c.Registry for every
// Completion received, to keep a noreply query's outstanding watermark
// moving.
func (p *Pool) Completions() <-chan Completion { return p.completions }

// Submit hands job to the pool, running it on some worker goroutine as
// soon as one is free. It returns an error immediately (rather than
// blocking) if the pool is saturated or has been stopped — the same
// "queue full" backpressure signal the source scheduler surfaced to
// its caller.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		job.Arena.Release()
		p.signalCompletion(job)
		return ErrPoolStopped
	}

	err := p.ants.Submit(func() {
		defer job.Arena.Release()
		p.evaluate(job)
		p.signalCompletion(job)
	})
	if err != nil {
		job.Arena.Release()
		p.signalCompletion(job)
		if p.log != nil {
			p.log.Warn("queryworkers: submit rejected: %v", err)
		}
		return err
	}
	return nil
}

// signalCompletion notifies the registry owner that job's retained
// query id is ready to be released. A job carries a nonzero
// Params.QueryID only for a noreply query, which keeps its id
// outstanding until this point so a concurrent NOREPLY_WAIT can
// observe it.
func (p *Pool) signalCompletion(job Job) {
	if job.Params.QueryID == 0 || job.Registry == nil {
		return
	}
	select {
	case p.completions <- Completion{Registry: job.Registry, QueryID: job.Params.QueryID}:
	default:
		if p.log != nil {
			p.log.Warn("queryworkers: completion backlog full, query id %d will not be released", job.Params.QueryID)
		}
	}
}

// Running reports how many jobs are currently executing.
func (p *Pool) Running() int { return p.ants.Running() }

// Stop marks the pool stopped and releases the underlying ants pool.
// It does not wait for jobs that are already running to finish.
// Submit fails with ErrPoolStopped after Stop returns.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.ants.Release()
}
