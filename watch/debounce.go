package watch

import (
	"sync"
	"time"
)

// MaxDebounceDelay is the upper clamp for the coalescing delay.
const MaxDebounceDelay = 2000 * time.Millisecond

// PendingEvent is the payload held for a debounced key. Subsequent events
// for the same key overwrite it in place before the timer fires.
type PendingEvent struct {
	Root        string
	RelPath     string
	FileName    string
	Kind        ChangeKind
	FirstSeenAt time.Time
}

// DebounceCoalescer coalesces bursts of raw filesystem events for the same
// (root, path) key into a single delayed notification. Each new event for a
// pending key replaces the payload and restarts the timer, so exactly one
// downstream call fires per quiet period, carrying the most recent payload.
type DebounceCoalescer struct {
	mu       sync.Mutex
	delay    time.Duration
	fire     func(PendingEvent)
	timers   map[string]*time.Timer
	pending  map[string]*PendingEvent
	disposed bool
}

// NewDebounceCoalescer creates a coalescer with the given delay, clamped to
// [0, 2s]. A zero delay fires synchronously. The fire callback receives the
// coalesced payload once per quiet period.
func NewDebounceCoalescer(delay time.Duration, fire func(PendingEvent)) *DebounceCoalescer {
	if delay < 0 {
		delay = 0
	}
	if delay > MaxDebounceDelay {
		delay = MaxDebounceDelay
	}
	return &DebounceCoalescer{
		delay:   delay,
		fire:    fire,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]*PendingEvent),
	}
}

// OnEvent registers a raw event for the key (root, relPath). With a zero
// delay the downstream handler is invoked synchronously; otherwise any
// pending timer for the key is cancelled, the payload is replaced with the
// latest data, and the timer restarts.
func (d *DebounceCoalescer) OnEvent(root, relPath, fileName string, kind ChangeKind) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}

	if d.delay == 0 {
		// Fired under the lock so Dispose cannot return mid-callback
		d.fire(PendingEvent{
			Root:        root,
			RelPath:     relPath,
			FileName:    fileName,
			Kind:        kind,
			FirstSeenAt: time.Now(),
		})
		d.mu.Unlock()
		return
	}

	key := root + "\x00" + relPath

	if existing, ok := d.pending[key]; ok {
		// Last write wins; keep the original first-seen time
		existing.FileName = fileName
		existing.Kind = kind
	} else {
		d.pending[key] = &PendingEvent{
			Root:        root,
			RelPath:     relPath,
			FileName:    fileName,
			Kind:        kind,
			FirstSeenAt: time.Now(),
		}
	}

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.expire(key)
	})
	d.mu.Unlock()
}

// expire pops the pending payload for key and fires the downstream handler.
// The callback runs under the lock: Dispose blocks until any in-flight fire
// completes, so no callback can still be running once teardown returns. The
// downstream is a non-blocking enqueue, so holding the lock is safe.
func (d *DebounceCoalescer) expire(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed {
		return
	}
	evt, ok := d.pending[key]
	delete(d.pending, key)
	delete(d.timers, key)

	if ok {
		d.fire(*evt)
	}
}

// PendingCount returns the number of keys currently awaiting their timer.
func (d *DebounceCoalescer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Dispose cancels and discards every pending timer. No downstream call can
// fire after Dispose returns.
func (d *DebounceCoalescer) Dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.disposed = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
	d.pending = make(map[string]*PendingEvent)
}
