package events

import "sync"

// RingBuffer keeps the newest FormattedEvents up to a fixed capacity,
// dropping the oldest first. It is safe for concurrent use.
type RingBuffer struct {
	mu    sync.RWMutex
	slots []FormattedEvent
	next  int  // slot the next Add writes to
	full  bool // every slot holds an event
}

// NewRingBuffer creates a RingBuffer. Capacities below 1 are raised to 1.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{slots: make([]FormattedEvent, max(1, capacity))}
}

// Add stores e, overwriting the oldest event when the buffer is full.
func (rb *RingBuffer) Add(e FormattedEvent) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.slots[rb.next] = e
	rb.next++
	if rb.next == len(rb.slots) {
		rb.next = 0
		rb.full = true
	}
}

// ListAll returns every buffered event, oldest first. It is nil when empty.
func (rb *RingBuffer) ListAll() []FormattedEvent {
	return rb.Last(-1)
}

// Last returns up to n of the newest events, oldest first. A negative n
// returns everything.
func (rb *RingBuffer) Last(n int) []FormattedEvent {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	size := rb.lenLocked()
	if n < 0 || n > size {
		n = size
	}
	if n == 0 {
		return nil
	}
	out := make([]FormattedEvent, n)
	start := rb.next - n
	if start < 0 {
		// Wrapped: the tail of slots holds the older half.
		k := copy(out, rb.slots[len(rb.slots)+start:])
		copy(out[k:], rb.slots[:rb.next])
		return out
	}
	copy(out, rb.slots[start:rb.next])
	return out
}

// Reset empties the buffer, e.g. when a new session starts.
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	clear(rb.slots)
	rb.next = 0
	rb.full = false
}

// Len returns the number of buffered events.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.lenLocked()
}

// Cap returns the capacity of the buffer.
func (rb *RingBuffer) Cap() int {
	return len(rb.slots)
}

func (rb *RingBuffer) lenLocked() int {
	if rb.full {
		return len(rb.slots)
	}
	return rb.next
}
