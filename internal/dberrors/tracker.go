package dberrors

import (
	"sync"
	"time"
)

// ErrorTracker tracks parse-error metrics for observability: how many
// ClientErrors/ParseErrors/IoErrors/RangeErrors this core has returned
// and when each category last occurred.
type ErrorTracker struct {
	mu             sync.RWMutex
	errorCounts    map[ErrorCategory]uint64
	lastOccurrence map[ErrorCategory]time.Time
}

// NewErrorTracker creates a new error tracker.
func NewErrorTracker() *ErrorTracker {
	return &ErrorTracker{
		errorCounts:    make(map[ErrorCategory]uint64),
		lastOccurrence: make(map[ErrorCategory]time.Time),
	}
}

// RecordError records an error occurrence under its category.
func (et *ErrorTracker) RecordError(category ErrorCategory) {
	et.mu.Lock()
	defer et.mu.Unlock()

	et.errorCounts[category]++
	et.lastOccurrence[category] = time.Now()
}

// Count returns how many errors of category have been recorded.
func (et *ErrorTracker) Count(category ErrorCategory) uint64 {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return et.errorCounts[category]
}

// LastOccurrence returns when category was last recorded, and whether
// it has ever occurred.
func (et *ErrorTracker) LastOccurrence(category ErrorCategory) (time.Time, bool) {
	et.mu.RLock()
	defer et.mu.RUnlock()
	t, ok := et.lastOccurrence[category]
	return t, ok
}
