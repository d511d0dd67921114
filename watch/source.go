package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// ChangeSource produces filtered change events for one watched root. Exactly
// one variant is active per root at a time; switching variants is a full
// teardown and rebuild of the owning RootWatcher, never a per-event branch.
type ChangeSource interface {
	Start(ctx context.Context) error
	Stop()
	Mode() WatchMode
}

// StructuredSource feeds from the git-status poller. The provider batches
// rapid changes itself, so accepted paths are delivered immediately with no
// additional debounce; the dedup window absorbs the same path appearing in
// both the index and working-tree lists of a single poll.
type StructuredSource struct {
	root   string
	poller *git.StatusPoller
	dedup  *DedupWindow
	filter func() *PatternFilter
	emit   func(Event)
	logger *logrus.Entry
}

// StructuredSourceConfig wires a StructuredSource.
type StructuredSourceConfig struct {
	Root         string
	Provider     git.StatusProvider
	PollInterval time.Duration // <=0 uses the poller default
	Dedup        *DedupWindow
	Filter       func() *PatternFilter
	Emit         func(Event)
}

// NewStructuredSource creates the structured change source for a root.
func NewStructuredSource(cfg StructuredSourceConfig) *StructuredSource {
	s := &StructuredSource{
		root:   cfg.Root,
		dedup:  cfg.Dedup,
		filter: cfg.Filter,
		emit:   cfg.Emit,
		logger: logging.NewLogger("structured-source"),
	}
	s.poller = git.NewStatusPoller(cfg.Provider, cfg.Root, cfg.PollInterval, s.onStateChange)
	return s
}

// Start begins polling the structured status feed.
func (s *StructuredSource) Start(ctx context.Context) error {
	s.poller.Start(ctx)
	return nil
}

// Stop halts the poller.
func (s *StructuredSource) Stop() {
	s.poller.Stop()
}

// Mode identifies this source for diagnostics.
func (s *StructuredSource) Mode() WatchMode {
	return ModeStructured
}

// onStateChange unions the provider's two change lists (first occurrence per
// path wins), then runs each unique path through dedup and the pattern
// filter before delivering.
func (s *StructuredSource) onStateChange(changes *git.Changes) {
	for _, fs := range changes.Union() {
		if !s.dedup.ShouldProcess(s.root, fs.Path) {
			continue
		}
		if !s.filter().ShouldTrack(fs.Path) {
			continue
		}
		s.emit(Event{
			Root:     s.root,
			RelPath:  fs.Path,
			FileName: filepath.Base(fs.Path),
			Kind:     KindFromState(fs.State),
			At:       time.Now(),
		})
	}
}
