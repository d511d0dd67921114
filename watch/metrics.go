package watch

import (
	"context"
	"sync"
	"time"

	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

const (
	// reportInterval is how often the reporter computes and logs rates.
	reportInterval = 10 * time.Second

	// DefaultWarnThreshold triggers a warning when more events than this
	// arrive inside one report interval. Observational only, never throttling.
	DefaultWarnThreshold = 50
)

// Metrics is a point-in-time snapshot of pipeline throughput.
type Metrics struct {
	EventsLast10s   int     `json:"events_last_10s"`
	EventsPerSecond float64 `json:"events_per_second"`
	PendingEvents   int     `json:"pending_events"`
	PeakPending     int     `json:"peak_pending"`
}

// RateReporter tracks event throughput in a fixed-capacity ring buffer and
// periodically logs rates and pending-event counts.
type RateReporter struct {
	mu          sync.Mutex
	ring        *RateRingBuffer
	threshold   int
	pendingFunc func() int
	peakPending int
	logger      *logrus.Entry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRateReporter creates a reporter. pendingFunc supplies the current
// pending-event count; a nil func reports zero.
func NewRateReporter(threshold int, pendingFunc func() int) *RateReporter {
	if threshold <= 0 {
		threshold = DefaultWarnThreshold
	}
	if pendingFunc == nil {
		pendingFunc = func() int { return 0 }
	}
	return &RateReporter{
		ring:        NewRateRingBuffer(DefaultRingCapacity),
		threshold:   threshold,
		pendingFunc: pendingFunc,
		logger:      logging.NewLogger("rate-reporter"),
	}
}

// Record registers one delivered event.
func (r *RateReporter) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring.Push(time.Now())
	if pending := r.pendingFunc(); pending > r.peakPending {
		r.peakPending = pending
	}
}

// Snapshot returns current throughput numbers.
func (r *RateReporter) Snapshot() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.ring.CountSince(time.Now().Add(-reportInterval))
	pending := r.pendingFunc()
	if pending > r.peakPending {
		r.peakPending = pending
	}
	return Metrics{
		EventsLast10s:   count,
		EventsPerSecond: float64(count) / reportInterval.Seconds(),
		PendingEvents:   pending,
		PeakPending:     r.peakPending,
	}
}

// Start begins periodic reporting until Stop or context cancellation.
func (r *RateReporter) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.report()
			}
		}
	}()
}

func (r *RateReporter) report() {
	m := r.Snapshot()
	fields := logrus.Fields{
		"events_last_10s": m.EventsLast10s,
		"events_per_sec":  m.EventsPerSecond,
		"pending":         m.PendingEvents,
		"peak_pending":    m.PeakPending,
	}
	if m.EventsLast10s > r.threshold {
		r.logger.WithFields(fields).Warnf("High change rate: %d events in the last 10s", m.EventsLast10s)
		return
	}
	r.logger.WithFields(fields).Debug("Change rate report")
}

// Stop halts periodic reporting.
func (r *RateReporter) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.done != nil {
		<-r.done
	}
}
