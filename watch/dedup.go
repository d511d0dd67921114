package watch

import (
	"sync"
	"time"
)

const (
	// DefaultDedupWindow suppresses a second signal for the same key inside
	// this horizon. The structured status feed frequently enumerates the same
	// path in both its index and working-tree lists within one poll.
	DefaultDedupWindow = 100 * time.Millisecond

	// dedupHorizon is the age past which entries are swept. The table must
	// never grow unbounded under sustained churn.
	dedupHorizon = 5 * time.Second
)

// DedupWindow suppresses repeated signals for the same (root, path) key
// arriving within a short window. Entries older than a fixed horizon are
// purged opportunistically on each call.
type DedupWindow struct {
	mu        sync.Mutex
	window    time.Duration
	entries   map[string]time.Time
	lastSweep time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewDedupWindow creates a dedup table with the given suppression window. A
// non-positive window falls back to the default.
func NewDedupWindow(window time.Duration) *DedupWindow {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupWindow{
		window:  window,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// ShouldProcess reports whether a signal for (root, relPath) should pass. A
// key processed within the window is suppressed without refreshing its
// timestamp; otherwise "now" is recorded and the signal passes.
func (w *DedupWindow) ShouldProcess(root, relPath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.sweep(now)

	key := root + "\x00" + relPath
	if last, ok := w.entries[key]; ok && now.Sub(last) < w.window {
		return false
	}

	w.entries[key] = now
	return true
}

// Reset drops all dedup state.
func (w *DedupWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = make(map[string]time.Time)
}

// Len returns the current entry count.
func (w *DedupWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// sweep removes entries older than the horizon. It runs at most once per
// horizon so sustained churn doesn't pay a full-table scan on every call.
func (w *DedupWindow) sweep(now time.Time) {
	if now.Sub(w.lastSweep) < dedupHorizon {
		return
	}
	w.lastSweep = now

	for key, last := range w.entries {
		if now.Sub(last) >= dedupHorizon {
			delete(w.entries, key)
		}
	}
}
