// Package queryid implements the per-connection query-id registry: a
// monotonically increasing id assigned to every parsed query envelope,
// and an outstanding list ordered by allocation so the oldest still-open
// id is always available in O(1). It is adapted from the storage
// engine's own invariant-checked registries (the same "ascending
// sequence plus an ordered outstanding set, checked under a build
// tag" shape used for transaction and checkpoint sequencing).
package queryid

import (
	"sync"

	"github.com/google/uuid"
)

// ID is a query's identity within one connection's registry. Ids are
// assigned in strictly ascending order starting at 1; 0 is never
// allocated and can be used by a caller as a "no id" sentinel for
// queries that expect a reply, whose id is released immediately.
type ID uint64

// Registry allocates and releases query ids for one connection. A
// Registry is not safe for concurrent use from more than one
// goroutine without the caller's own locking, matching the source's
// "this object belongs to one connection's home thread" contract — in
// debug builds that contract is asserted, not just documented.
type Registry struct {
	mu             sync.Mutex
	next           ID
	outstanding    []ID // ascending; oldest allocation at index 0
	ownerGoroutine interface{}
	connectionID   string
}

// New creates an empty registry, tagged with a fresh connection id
// used only to label this registry's metrics (see metrics.Ingestion's
// "connection" label) — it plays no role in id allocation itself.
func New() *Registry {
	r := &Registry{next: 1, connectionID: uuid.NewString()}
	r.bindOwner()
	return r
}

// ConnectionID returns the registry's unique connection tag.
func (r *Registry) ConnectionID() string { return r.connectionID }

// Allocate assigns and returns the next ascending id, recording it as
// outstanding.
func (r *Registry) Allocate() ID {
	r.checkOwner()
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.outstanding = append(r.outstanding, id)
	return id
}

// Release unlinks id from the outstanding list, from wherever it sits
// — not just the head. This mirrors the source query_id_t's
// intrusive-list-node destructor, which removes itself from whatever
// position it occupies in its connection's list; under the ants-backed
// worker pool, queries dispatched concurrently complete out of order,
// so release from a non-head position is the expected case, not
// corruption. The watermark (OldestOutstanding) only advances when the
// released id was the head.
//
// Release panics if id is not currently linked in this registry. That
// can only happen from a caller bug — a double release, or releasing
// an id that belongs to a different connection's registry — the same
// class of "must never happen" violation the source enforces with a
// process-aborting guarantee() rather than a recoverable error.
func (r *Registry) Release(id ID) {
	r.checkOwner()
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, outstanding := range r.outstanding {
		if outstanding == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic("queryid: release of an id not linked in this registry")
	}
	r.outstanding = append(r.outstanding[:idx], r.outstanding[idx+1:]...)
}

// OldestOutstanding returns the current watermark: the oldest
// still-outstanding id, or next (the id that would be allocated next)
// if nothing is outstanding. The second return reports whether
// anything is actually outstanding. The watermark itself is always a
// valid id value, per the invariant oldest_outstanding <= next.
func (r *Registry) OldestOutstanding() (ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outstanding) == 0 {
		return r.next, false
	}
	return r.outstanding[0], true
}

// Next returns the id that will be assigned by the next Allocate call.
func (r *Registry) Next() ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}

// Len reports how many ids are currently outstanding.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outstanding)
}
