// Package loading tracks whether the client has requests in flight.
//
// The Tracker keeps a reference count of outstanding requests and exposes a
// busy flag that is true while at least one request has not finished.
package loading

import (
	"sync"

	"github.com/dmitrijs2005/labportal/internal/pubsub"
)

// Tracker is a process-wide, reference-counted busy indicator. The zero
// value is not usable; construct with NewTracker.
type Tracker struct {
	mu      sync.Mutex
	pending int
	busy    *pubsub.Subject[bool]
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{busy: pubsub.NewSubject(false)}
}

// Show registers one more outstanding request and publishes busy=true.
func (t *Tracker) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending++
	t.busy.Publish(true)
}

// Hide releases one outstanding request. The count never drops below zero;
// busy=false is published only when it reaches zero.
func (t *Tracker) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending--
	if t.pending <= 0 {
		t.pending = 0
		t.busy.Publish(false)
	}
}

// Busy reports whether any request is outstanding.
func (t *Tracker) Busy() bool {
	return t.busy.Value()
}

// Pending returns the number of outstanding requests.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Subscribe streams the busy flag, starting with its current value.
func (t *Tracker) Subscribe() (<-chan bool, func()) {
	return t.busy.Subscribe()
}
