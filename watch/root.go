package watch

import (
	"context"
	"sync"
	"time"

	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// RootWatcherConfig wires a RootWatcher.
type RootWatcherConfig struct {
	Root             string
	Provider         git.StatusProvider
	IncludePatterns  []string
	Debounce         time.Duration
	PollInterval     time.Duration
	Emit             func(Event)
	OnCommitBoundary func(root, commit string)
}

// RootWatcher owns one watched root: exactly one active change-source
// variant, a commit-boundary detector when the root is a repository, and the
// dedup/debounce/filter state scoped to that root. Switching source variants
// is a full teardown and rebuild, never a partial mutation.
type RootWatcher struct {
	root     string
	mode     WatchMode
	provider git.StatusProvider
	emit     func(Event)
	logger   *logrus.Entry

	filterMu sync.RWMutex
	filter   *PatternFilter

	dedup    *DedupWindow
	debounce *DebounceCoalescer

	structured *StructuredSource
	raw        *RawSource
	commits    *CommitBoundaryDetector

	started bool
}

// NewRootWatcher builds the watcher state for a root. The source variant is
// selected once, at Start: structured when a repository maps to the root,
// raw whitelist-only fallback otherwise.
func NewRootWatcher(cfg RootWatcherConfig) (*RootWatcher, error) {
	filter, err := NewPatternFilter(LoadIgnorePatterns(cfg.Root), cfg.IncludePatterns)
	if err != nil {
		return nil, err
	}

	w := &RootWatcher{
		root:     cfg.Root,
		provider: cfg.Provider,
		emit:     cfg.Emit,
		filter:   filter,
		dedup:    NewDedupWindow(DefaultDedupWindow),
		logger:   logging.NewLogger("root-watcher"),
	}

	w.debounce = NewDebounceCoalescer(cfg.Debounce, func(evt PendingEvent) {
		w.emit(Event{
			Root:     evt.Root,
			RelPath:  evt.RelPath,
			FileName: evt.FileName,
			Kind:     evt.Kind,
			At:       evt.FirstSeenAt,
		})
	})

	if cfg.Provider.IsGitRepo(context.Background(), cfg.Root) {
		w.mode = ModeStructured
		w.structured = NewStructuredSource(StructuredSourceConfig{
			Root:         cfg.Root,
			Provider:     cfg.Provider,
			PollInterval: cfg.PollInterval,
			Dedup:        w.dedup,
			Filter:       w.Filter,
			Emit:         w.emit,
		})
		// Whitelist files are gitignored, so the status feed never reports
		// them; a raw companion covers exactly the included-and-ignored
		// set, leaving everything git can see to the structured source.
		w.raw = NewRawSource(RawSourceConfig{
			Root:          cfg.Root,
			WhitelistOnly: true,
			Filter:        w.Filter,
			Debounce:      w.debounce,
		})
		w.commits = NewCommitBoundaryDetector(cfg.Root, cfg.Provider, cfg.OnCommitBoundary)
	} else {
		w.mode = ModeRaw
		w.logger.Infof("No repository maps to %s, falling back to raw filesystem events", cfg.Root)
		w.raw = NewRawSource(RawSourceConfig{
			Root:          cfg.Root,
			WhitelistOnly: false,
			Filter:        w.Filter,
			Debounce:      w.debounce,
		})
	}

	return w, nil
}

// Start activates the selected source and, in structured mode, the commit
// detector and whitelist companion.
func (w *RootWatcher) Start(ctx context.Context) error {
	if w.structured != nil {
		if err := w.structured.Start(ctx); err != nil {
			return err
		}
	}
	if w.raw != nil {
		// In structured mode the companion only matters once include globs
		// exist; it is cheap enough to run regardless, and a later filter
		// rebuild may add globs without a restart.
		if err := w.raw.Start(ctx); err != nil {
			w.logger.WithError(err).Warnf("Raw watcher failed for %s", w.root)
			if w.mode == ModeRaw {
				return err
			}
		}
	}
	if w.commits != nil {
		if err := w.commits.Start(ctx); err != nil {
			w.logger.WithError(err).Warnf("Commit detector failed for %s", w.root)
		}
	}
	w.started = true
	return nil
}

// Mode reports the active change-source variant for diagnostics.
func (w *RootWatcher) Mode() WatchMode {
	return w.mode
}

// Root returns the watched root path.
func (w *RootWatcher) Root() string {
	return w.root
}

// Filter returns the current pattern filter for the root.
func (w *RootWatcher) Filter() *PatternFilter {
	w.filterMu.RLock()
	defer w.filterMu.RUnlock()
	return w.filter
}

// RebuildFilter re-reads the root's ignore rules and swaps in a filter with
// the given include patterns. Called when configuration or a session's
// per-session patterns change.
func (w *RootWatcher) RebuildFilter(includePatterns []string) error {
	filter, err := NewPatternFilter(LoadIgnorePatterns(w.root), includePatterns)
	if err != nil {
		return err
	}
	w.filterMu.Lock()
	w.filter = filter
	w.filterMu.Unlock()
	return nil
}

// PendingCount returns the number of debounced events awaiting their timer.
func (w *RootWatcher) PendingCount() int {
	return w.debounce.PendingCount()
}

// Stop tears the watcher down: sources and the commit detector halt, every
// pending debounce timer is cancelled, and dedup state is dropped. No
// callback fires after Stop returns.
func (w *RootWatcher) Stop() {
	if !w.started {
		w.debounce.Dispose()
		return
	}
	if w.structured != nil {
		w.structured.Stop()
	}
	if w.raw != nil {
		w.raw.Stop()
	}
	if w.commits != nil {
		w.commits.Stop()
	}
	w.debounce.Dispose()
	w.dedup.Reset()
	w.started = false
}
