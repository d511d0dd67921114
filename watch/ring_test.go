package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateRingBuffer(t *testing.T) {
	base := time.Now()

	t.Run("fills up to capacity", func(t *testing.T) {
		ring := NewRateRingBuffer(5)
		for i := 0; i < 3; i++ {
			ring.Push(base.Add(time.Duration(i) * time.Second))
		}
		assert.Equal(t, 3, ring.Len())
		assert.Equal(t, 5, ring.Capacity())
	})

	t.Run("overwrites oldest when full", func(t *testing.T) {
		ring := NewRateRingBuffer(5)
		for i := 0; i < 8; i++ {
			ring.Push(base.Add(time.Duration(i) * time.Second))
		}
		assert.Equal(t, 5, ring.Len())

		// Samples 0-2 were overwritten; only 3..7 remain
		assert.Equal(t, 5, ring.CountSince(base.Add(3*time.Second)))
		assert.Equal(t, 2, ring.CountSince(base.Add(6*time.Second)))
	})

	t.Run("count is bounded under sustained load", func(t *testing.T) {
		ring := NewRateRingBuffer(1000)
		for i := 0; i < 10000; i++ {
			ring.Push(base.Add(time.Duration(i) * time.Millisecond))
		}
		assert.Equal(t, 1000, ring.Len())
		// Everything retained is within the final second
		assert.Equal(t, 1000, ring.CountSince(base.Add(9000*time.Millisecond)))
	})

	t.Run("non-positive capacity uses default", func(t *testing.T) {
		ring := NewRateRingBuffer(0)
		assert.Equal(t, DefaultRingCapacity, ring.Capacity())
	})
}
