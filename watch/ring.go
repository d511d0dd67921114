package watch

import "time"

// DefaultRingCapacity is the number of event timestamps retained for rate
// accounting.
const DefaultRingCapacity = 1000

// RateRingBuffer is a fixed-capacity circular buffer of event timestamps.
// Memory is O(capacity) for the life of the process; inserting past capacity
// overwrites the oldest sample. It is not safe for concurrent use; callers
// serialize access on the pipeline loop.
type RateRingBuffer struct {
	samples []time.Time
	next    int
	count   int
}

// NewRateRingBuffer creates a buffer with the given capacity. A
// non-positive capacity falls back to the default.
func NewRateRingBuffer(capacity int) *RateRingBuffer {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &RateRingBuffer{samples: make([]time.Time, capacity)}
}

// Push records an event timestamp, overwriting the oldest sample when full.
func (r *RateRingBuffer) Push(now time.Time) {
	r.samples[r.next] = now
	r.next = (r.next + 1) % len(r.samples)
	if r.count < len(r.samples) {
		r.count++
	}
}

// CountSince returns how many retained samples are at or after windowStart.
// The scan is bounded by capacity, never by total events observed.
func (r *RateRingBuffer) CountSince(windowStart time.Time) int {
	n := 0
	for i := 0; i < r.count; i++ {
		if !r.samples[i].Before(windowStart) {
			n++
		}
	}
	return n
}

// Len returns the number of samples currently retained.
func (r *RateRingBuffer) Len() int {
	return r.count
}

// Capacity returns the fixed buffer capacity.
func (r *RateRingBuffer) Capacity() int {
	return len(r.samples)
}
