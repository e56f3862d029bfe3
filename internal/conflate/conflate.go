// Package conflate provides a single-slot channel that keeps only the
// most recent value when the consumer lags behind the producer.
package conflate

import "sync"

// Slot is a capacity-1 channel with overwrite-on-full semantics: Put
// never blocks on a slow consumer; it replaces the pending unread value
// instead. Only the latest value is guaranteed to be delivered.
//
// Safe for concurrent use. With multiple receivers delivery is one-of-n;
// the intended shape is one producer side, one consumer.
type Slot[T any] struct {
	ch chan T

	mu     sync.Mutex
	closed bool
}

// NewSlot constructs an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// C returns the receive side of the slot. The channel is closed after
// Close, once the last pending value (if any) has been taken.
func (s *Slot[T]) C() <-chan T { return s.ch }

// Put stores v, overwriting a pending unread value. No-op after Close.
func (s *Slot[T]) Put(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		// Slot full: evict the stale value and retry. The consumer may
		// race us for it; either way the next send observes a free slot
		// or succeeds on a later iteration.
		select {
		case <-s.ch:
		default:
		}
	}
}

// Close marks the slot complete. A pending value is still delivered
// before the channel close is observed by the consumer.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
