package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// RawSource subscribes to raw create/change/delete filesystem notifications
// for a root. Every signal passes through the pattern filter, then through
// the debounce coalescer before delivery. Directories and paths that vanish
// between the event and the stat are silently discarded.
//
// In whitelist-only mode the implicit "watch everything" behavior is
// disabled: only paths that match an explicit include glob AND are excluded
// by the ignore rules are accepted. This is how gitignored-but-relevant
// files are picked up alongside a structured source; included files that git
// status can see stay with the structured feed so they are never delivered
// twice.
type RawSource struct {
	root          string
	whitelistOnly bool
	filter        func() *PatternFilter
	debounce      *DebounceCoalescer
	watcher       *fsnotify.Watcher
	logger        *logrus.Entry

	cancel context.CancelFunc
	done   chan struct{}
}

// RawSourceConfig wires a RawSource.
type RawSourceConfig struct {
	Root          string
	WhitelistOnly bool
	Filter        func() *PatternFilter
	Debounce      *DebounceCoalescer
}

// NewRawSource creates the raw change source for a root.
func NewRawSource(cfg RawSourceConfig) *RawSource {
	return &RawSource{
		root:          cfg.Root,
		whitelistOnly: cfg.WhitelistOnly,
		filter:        cfg.Filter,
		debounce:      cfg.Debounce,
		logger:        logging.NewLogger("raw-source"),
	}
}

// Start registers fsnotify watches for the root tree and begins processing
// events until Stop or context cancellation.
func (s *RawSource) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := s.addRecursive(s.root); err != nil {
		watcher.Close()
		s.watcher = nil
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx)
	return nil
}

// loop consumes fsnotify events until cancellation.
func (s *RawSource) loop(ctx context.Context) {
	defer close(s.done)
	defer s.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.WithError(err).Debug("Watcher error")
		}
	}
}

// handleEvent classifies and filters one raw notification.
func (s *RawSource) handleEvent(event fsnotify.Event) {
	var kind ChangeKind
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = ChangeCreated
	case event.Op&fsnotify.Write != 0:
		kind = ChangeModified
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = ChangeDeleted
	default:
		// Chmod-only events carry no content change
		return
	}

	relPath, err := filepath.Rel(s.root, event.Name)
	if err != nil || relPath == "." {
		return
	}
	relPath = filepath.ToSlash(relPath)

	if kind != ChangeDeleted {
		info, err := os.Stat(event.Name)
		if err != nil {
			// Raced with a delete; skip silently
			return
		}
		if info.IsDir() {
			if kind == ChangeCreated {
				// New directories join the watch set; they are not reported
				if err := s.addRecursive(event.Name); err != nil {
					s.logger.WithError(err).Debugf("Failed to watch new directory %s", relPath)
				}
			}
			return
		}
	}

	filter := s.filter()
	if s.whitelistOnly {
		// Only included files the ignore rules hide from the status feed
		// belong to the companion; anything git can see would arrive twice.
		if !filter.MatchesInclude(relPath) || !filter.MatchesIgnore(relPath) {
			return
		}
	}
	if !filter.ShouldTrack(relPath) {
		return
	}

	s.debounce.OnEvent(s.root, relPath, filepath.Base(event.Name), kind)
}

// addRecursive registers the directory and every subdirectory, skipping the
// forced exclusions. fsnotify watches are not recursive on their own.
func (s *RawSource) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Tree mutated underneath the walk; skip what vanished
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (name == ".git" || name == ".lookout") {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			s.logger.WithError(err).Debugf("Failed to watch %s", path)
		}
		return nil
	})
}

// Stop tears the source down and waits for the event loop to exit.
func (s *RawSource) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// Mode identifies this source for diagnostics.
func (s *RawSource) Mode() WatchMode {
	return ModeRaw
}
