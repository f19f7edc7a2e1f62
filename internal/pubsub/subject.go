// Package pubsub provides a replay-latest broadcast subject: every new
// subscriber immediately receives the current value and then each
// subsequent one.
package pubsub

import "sync"

// DefaultBuffer is the per-subscriber channel capacity used by NewSubject.
const DefaultBuffer = 16

// Subject holds a current value of type T and fans every change out to
// subscribers.
//
// Publishing never blocks. If a subscriber falls more than its buffer
// behind, its oldest pending value is dropped so that the most recent value
// is always delivered.
type Subject[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[uint64]chan T
	nextID uint64
	buffer int
	closed bool
}

// NewSubject returns a subject seeded with initial.
func NewSubject[T any](initial T) *Subject[T] {
	return NewSubjectWithBuffer(initial, DefaultBuffer)
}

// NewSubjectWithBuffer is NewSubject with an explicit per-subscriber buffer.
func NewSubjectWithBuffer[T any](initial T, buffer int) *Subject[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Subject[T]{value: initial, subs: make(map[uint64]chan T), buffer: buffer}
}

// Value returns the most recently published value.
func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Publish replaces the current value and notifies subscribers.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.value = v
	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// Subscribe registers a new subscriber. The returned channel already holds
// the current value. Call cancel to unsubscribe; it closes the channel and
// is safe to call more than once.
func (s *Subject[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, s.buffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.value

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (s *Subject[T]) subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// offer sends v without blocking, evicting the oldest queued value when the
// channel is full. Callers hold the subject lock, so there is a single
// sender per channel.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
