package watch

import (
	"context"
	"sync"

	"github.com/grovetools/lookout/config"
	lkerrors "github.com/grovetools/lookout/errors"
	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// EngineConfig wires an Engine.
type EngineConfig struct {
	Config   *config.Config
	Provider git.StatusProvider
	Diff     git.DiffProvider
	Sessions SessionLookup

	// OnEvent observes each delivered change event, after routing. Optional.
	OnEvent func(Event)
	// OnCommit observes each reconciled commit boundary with the remaining
	// dirty-file count. Optional.
	OnCommit func(root, commit string, dirty int)
}

type commitSignal struct {
	root   string
	commit string
}

// Engine is the top of the pipeline: it owns one RootWatcher per watched
// root, funnels their events and commit boundaries into a single serialized
// loop, and delivers through the notification router. Serialization is the
// ordering guarantee for consumers; sources may be concurrent internally, but
// nothing reaches a session off the engine loop.
type Engine struct {
	cfg      *config.Config
	provider git.StatusProvider
	router   *NotificationRouter
	reporter *RateReporter
	sessions SessionLookup
	logger   *logrus.Entry

	mu       sync.Mutex
	watchers map[string]*RootWatcher
	patterns map[string][]string // per-root extra include patterns

	events  chan Event
	commits chan commitSignal
	done    chan struct{}

	onEvent  func(Event)
	onCommit func(root, commit string, dirty int)
}

// NewEngine builds the pipeline around the given collaborators.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		cfg:      cfg.Config,
		provider: cfg.Provider,
		sessions: cfg.Sessions,
		logger:   logging.NewLogger("engine"),
		watchers: make(map[string]*RootWatcher),
		patterns: make(map[string][]string),
		events:   make(chan Event, 256),
		commits:  make(chan commitSignal, 16),
		onEvent:  cfg.OnEvent,
		onCommit: cfg.OnCommit,
	}
	e.router = NewNotificationRouter(cfg.Sessions, cfg.Diff, e.filterFor)
	e.reporter = NewRateReporter(DefaultWarnThreshold, e.pendingCount)
	return e
}

// AddRoot starts watching a root. Adding a root twice is an error.
func (e *Engine) AddRoot(ctx context.Context, root string) error {
	e.mu.Lock()
	if _, exists := e.watchers[root]; exists {
		e.mu.Unlock()
		return lkerrors.New(lkerrors.ErrCodeRootAlreadyWatched, "root is already being watched").
			WithDetail("root", root)
	}
	e.mu.Unlock()

	watcher, err := NewRootWatcher(RootWatcherConfig{
		Root:             root,
		Provider:         e.provider,
		IncludePatterns:  e.includesFor(root),
		Debounce:         e.cfg.DebounceDelay(),
		PollInterval:     e.cfg.StatusPollInterval(),
		Emit:             e.enqueue,
		OnCommitBoundary: e.enqueueCommit,
	})
	if err != nil {
		return lkerrors.Wrap(err, lkerrors.ErrCodeWatchInit, "failed to build watcher").
			WithDetail("root", root)
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return lkerrors.Wrap(err, lkerrors.ErrCodeWatchInit, "failed to start watcher").
			WithDetail("root", root)
	}

	e.mu.Lock()
	e.watchers[root] = watcher
	e.mu.Unlock()
	e.logger.WithFields(logrus.Fields{"root": root, "mode": watcher.Mode()}).Info("Watching root")
	return nil
}

// RemoveRoot tears down the watcher for a root. Unknown roots are a no-op.
func (e *Engine) RemoveRoot(root string) {
	e.mu.Lock()
	watcher := e.watchers[root]
	delete(e.watchers, root)
	delete(e.patterns, root)
	e.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
		e.logger.WithField("root", root).Info("Stopped watching root")
	}
}

// SetSessionPatterns replaces the extra include patterns contributed by
// sessions on a root and rebuilds the root's filter in place. The active
// source picks the new filter up on its next event.
func (e *Engine) SetSessionPatterns(root string, patterns []string) error {
	e.mu.Lock()
	e.patterns[root] = patterns
	watcher := e.watchers[root]
	e.mu.Unlock()

	if watcher == nil {
		return nil
	}
	return watcher.RebuildFilter(e.includesFor(root))
}

// SetConfig swaps in reloaded configuration and rebuilds every root's
// filter so new global include patterns take effect. Debounce and poll
// intervals apply to roots added afterwards.
func (e *Engine) SetConfig(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	watchers := make([]*RootWatcher, 0, len(e.watchers))
	for _, w := range e.watchers {
		watchers = append(watchers, w)
	}
	e.mu.Unlock()

	for _, w := range watchers {
		if err := w.RebuildFilter(e.includesFor(w.Root())); err != nil {
			e.logger.WithError(err).Warnf("Filter rebuild failed for %s", w.Root())
		}
	}
}

// includesFor merges the global include patterns with the per-root session
// contributions.
func (e *Engine) includesFor(root string) []string {
	e.mu.Lock()
	extra := e.patterns[root]
	global := e.cfg.IncludePatterns
	e.mu.Unlock()

	merged := make([]string, 0, len(global)+len(extra))
	merged = append(merged, global...)
	merged = append(merged, extra...)
	return merged
}

func (e *Engine) filterFor(root string) *PatternFilter {
	e.mu.Lock()
	watcher := e.watchers[root]
	e.mu.Unlock()
	if watcher == nil {
		return nil
	}
	return watcher.Filter()
}

// pendingCount sums debounced events awaiting their timer across all roots.
func (e *Engine) pendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, w := range e.watchers {
		total += w.PendingCount()
	}
	return total
}

// enqueue hands an event to the serialized loop. If the loop has fallen this
// far behind, dropping is preferable to blocking a source's timer goroutine;
// the next poll or write will resurface the path.
func (e *Engine) enqueue(evt Event) {
	select {
	case e.events <- evt:
	default:
		e.logger.WithField("path", evt.RelPath).Warn("Event queue full, dropping event")
	}
}

func (e *Engine) enqueueCommit(root, commit string) {
	select {
	case e.commits <- commitSignal{root: root, commit: commit}:
	default:
		e.logger.WithField("root", root).Warn("Commit queue full, dropping boundary")
	}
}

// Run consumes the event and commit queues until the context is cancelled.
// All session mutation happens on this goroutine.
func (e *Engine) Run(ctx context.Context) error {
	e.done = make(chan struct{})
	defer close(e.done)

	e.reporter.Start(ctx)
	defer e.reporter.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-e.events:
			e.reporter.Record()
			e.router.Notify(ctx, evt)
			if e.onEvent != nil {
				e.onEvent(evt)
			}
		case sig := <-e.commits:
			e.handleCommit(ctx, sig)
		}
	}
}

// handleCommit refreshes the uncommitted file list and reconciles every
// session scoped to the root against it.
func (e *Engine) handleCommit(ctx context.Context, sig commitSignal) {
	uncommitted, err := e.provider.ListUncommittedFiles(ctx, sig.root)
	if err != nil {
		e.logger.WithError(err).WithField("root", sig.root).Warn("Failed to list uncommitted files")
		return
	}
	e.logger.WithFields(logrus.Fields{
		"root":   sig.root,
		"commit": sig.commit,
		"dirty":  len(uncommitted),
	}).Debug("Reconciling commit boundary")
	e.router.ReconcileCommit(sig.root, uncommitted)
	if e.onCommit != nil {
		e.onCommit(sig.root, sig.commit, len(uncommitted))
	}
}

// Metrics returns a snapshot of the pipeline's event-rate counters.
func (e *Engine) Metrics() Metrics {
	return e.reporter.Snapshot()
}

// Roots reports the watched roots and the source mode active for each.
func (e *Engine) Roots() map[string]WatchMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	modes := make(map[string]WatchMode, len(e.watchers))
	for root, w := range e.watchers {
		modes[root] = w.Mode()
	}
	return modes
}

// Stop tears down every root watcher. Call after Run has returned.
func (e *Engine) Stop() {
	e.mu.Lock()
	watchers := make([]*RootWatcher, 0, len(e.watchers))
	for _, w := range e.watchers {
		watchers = append(watchers, w)
	}
	e.watchers = make(map[string]*RootWatcher)
	e.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
	if e.done != nil {
		<-e.done
	}
}
