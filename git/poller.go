package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// StatusPoller turns the structured status provider into a push feed. It
// polls GetChanges at a fixed interval and invokes the callback whenever the
// snapshot differs from the previous one. The first successful poll only
// primes the comparison snapshot; files that were already dirty at Start are
// baseline state, not changes. Transient provider errors are treated as "no
// signal", never as failures.
type StatusPoller struct {
	provider StatusProvider
	root     string
	interval time.Duration
	onChange func(*Changes)
	logger   *logrus.Entry

	lastSnapshot string
	primed       bool
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewStatusPoller creates a poller for the given root. The onChange callback
// receives the full change lists every time the repository status moves.
func NewStatusPoller(provider StatusProvider, root string, interval time.Duration, onChange func(*Changes)) *StatusPoller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &StatusPoller{
		provider: provider,
		root:     root,
		interval: interval,
		onChange: onChange,
		logger:   logging.NewLogger("status-poller"),
	}
}

// Start begins polling in a background goroutine until Stop is called or the
// parent context is cancelled.
func (p *StatusPoller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		// Prime the snapshot right away so the pre-existing repository
		// state never masquerades as a change on the first tick.
		p.poll(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Poll runs a single polling pass immediately. Exposed so callers can force
// a refresh outside the ticker cadence.
func (p *StatusPoller) Poll(ctx context.Context) {
	p.poll(ctx)
}

func (p *StatusPoller) poll(ctx context.Context) {
	changes, err := p.provider.GetChanges(ctx, p.root)
	if err != nil {
		// Transient provider errors are no-signal, not failures
		p.logger.WithError(err).Debugf("Status poll failed for %s", p.root)
		return
	}

	snapshot := snapshotKey(changes)

	// The first successful poll establishes the baseline state without
	// firing: whatever was already dirty at Start is not a change. An
	// empty string cannot serve as the unprimed sentinel because it is
	// also the legitimate snapshot of a clean repository.
	if !p.primed {
		p.primed = true
		p.lastSnapshot = snapshot
		return
	}

	if snapshot == p.lastSnapshot {
		return
	}
	p.lastSnapshot = snapshot

	if p.onChange != nil {
		p.onChange(changes)
	}
}

// Stop halts polling and waits for the poll goroutine to exit.
func (p *StatusPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		<-p.done
	}
}

// snapshotKey flattens the change lists into a comparable string.
func snapshotKey(c *Changes) string {
	var b strings.Builder
	for _, fs := range c.Index {
		fmt.Fprintf(&b, "i:%s=%s;", fs.Path, fs.State)
	}
	for _, fs := range c.WorkingTree {
		fmt.Fprintf(&b, "w:%s=%s;", fs.Path, fs.State)
	}
	return b.String()
}
