package watch

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupWindow(t *testing.T) {
	base := time.Now()

	newClocked := func(window time.Duration) (*DedupWindow, *time.Time) {
		current := base
		w := NewDedupWindow(window)
		w.now = func() time.Time { return current }
		return w, &current
	}

	t.Run("suppresses repeat within window", func(t *testing.T) {
		w, clock := newClocked(100 * time.Millisecond)

		assert.True(t, w.ShouldProcess("/repo", "a.go"))
		*clock = base.Add(50 * time.Millisecond)
		assert.False(t, w.ShouldProcess("/repo", "a.go"))
	})

	t.Run("suppressed signal does not extend the window", func(t *testing.T) {
		w, clock := newClocked(100 * time.Millisecond)

		assert.True(t, w.ShouldProcess("/repo", "a.go"))
		*clock = base.Add(60 * time.Millisecond)
		assert.False(t, w.ShouldProcess("/repo", "a.go"))
		// 110ms after the accepted signal, not the suppressed one
		*clock = base.Add(110 * time.Millisecond)
		assert.True(t, w.ShouldProcess("/repo", "a.go"))
	})

	t.Run("distinct keys are independent", func(t *testing.T) {
		w, _ := newClocked(100 * time.Millisecond)

		assert.True(t, w.ShouldProcess("/repo", "a.go"))
		assert.True(t, w.ShouldProcess("/repo", "b.go"))
		assert.True(t, w.ShouldProcess("/other", "a.go"))
	})

	t.Run("old entries are swept", func(t *testing.T) {
		w, clock := newClocked(100 * time.Millisecond)

		for i := 0; i < 50; i++ {
			assert.True(t, w.ShouldProcess("/repo", fmt.Sprintf("file%d.go", i)))
		}
		assert.Equal(t, 50, w.Len())

		// Beyond the sweep horizon everything stale is purged
		*clock = base.Add(6 * time.Second)
		assert.True(t, w.ShouldProcess("/repo", "fresh.go"))
		assert.Equal(t, 1, w.Len())
	})

	t.Run("reset drops all state", func(t *testing.T) {
		w, _ := newClocked(100 * time.Millisecond)

		assert.True(t, w.ShouldProcess("/repo", "a.go"))
		w.Reset()
		assert.Equal(t, 0, w.Len())
		assert.True(t, w.ShouldProcess("/repo", "a.go"))
	})
}
