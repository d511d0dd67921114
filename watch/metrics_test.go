package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateReporterSnapshot(t *testing.T) {
	pending := 0
	reporter := NewRateReporter(50, func() int { return pending })

	for i := 0; i < 7; i++ {
		reporter.Record()
	}

	m := reporter.Snapshot()
	assert.Equal(t, 7, m.EventsLast10s)
	assert.InDelta(t, 0.7, m.EventsPerSecond, 0.001)
	assert.Equal(t, 0, m.PendingEvents)
}

func TestRateReporterTracksPeakPending(t *testing.T) {
	pending := 0
	reporter := NewRateReporter(50, func() int { return pending })

	pending = 3
	reporter.Record()
	pending = 9
	reporter.Record()
	pending = 2

	m := reporter.Snapshot()
	assert.Equal(t, 2, m.PendingEvents)
	assert.Equal(t, 9, m.PeakPending)
}
