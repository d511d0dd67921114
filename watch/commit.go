package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// CommitBoundaryDetector watches a root's repository metadata (HEAD, refs,
// index) and emits a boundary event whenever the resolved commit identifier
// changes, including on first resolution. Resolution failures (e.g. an
// unborn HEAD) are treated as no-signal.
type CommitBoundaryDetector struct {
	root            string
	provider        git.StatusProvider
	onBoundary      func(root, commit string)
	mu              sync.Mutex
	lastKnownCommit string
	watcher         *fsnotify.Watcher
	logger          *logrus.Entry

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommitBoundaryDetector creates a detector for the root. onBoundary runs
// on the detector's goroutine whenever a commit boundary is crossed.
func NewCommitBoundaryDetector(root string, provider git.StatusProvider, onBoundary func(root, commit string)) *CommitBoundaryDetector {
	return &CommitBoundaryDetector{
		root:       root,
		provider:   provider,
		onBoundary: onBoundary,
		logger:     logging.NewLogger("commit-detector"),
	}
}

// Start resolves the metadata directory, registers watches, performs the
// first commit resolution, and begins observing until Stop.
func (d *CommitBoundaryDetector) Start(ctx context.Context) error {
	gitDir, err := d.provider.GitDir(ctx, d.root)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	d.watcher = watcher

	// HEAD and index live directly in the metadata dir; branch tips under
	// refs/heads. fsnotify watches are not recursive.
	watchDirs := []string{
		gitDir,
		filepath.Join(gitDir, "refs"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, dir := range watchDirs {
		if err := watcher.Add(dir); err != nil {
			d.logger.WithError(err).Debugf("Failed to watch %s", dir)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	go d.loop(ctx)

	// First resolution counts as a boundary
	d.CheckNow(ctx)
	return nil
}

func (d *CommitBoundaryDetector) loop(ctx context.Context) {
	defer close(d.done)
	defer d.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !isMetadataTouch(event) {
				continue
			}
			d.CheckNow(ctx)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.WithError(err).Debug("Metadata watcher error")
		}
	}
}

// isMetadataTouch reports whether the event concerns HEAD, the index, or a
// ref. Lock files churn constantly during git operations and are skipped.
func isMetadataTouch(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, ".lock") {
		return false
	}
	if base == "HEAD" || base == "index" || base == "packed-refs" {
		return true
	}
	return strings.Contains(filepath.ToSlash(event.Name), "/refs/")
}

// CheckNow resolves the current commit and emits a boundary event if it
// differs from the last seen identifier.
func (d *CommitBoundaryDetector) CheckNow(ctx context.Context) {
	commit, err := d.provider.CurrentCommit(ctx, d.root)
	if err != nil {
		// Unborn HEAD or transient failure: no signal
		d.logger.WithError(err).Debugf("Commit resolution failed for %s", d.root)
		return
	}

	d.mu.Lock()
	if commit == d.lastKnownCommit {
		d.mu.Unlock()
		return
	}
	d.lastKnownCommit = commit
	d.mu.Unlock()
	d.logger.WithFields(logrus.Fields{"root": d.root, "commit": commit}).Debug("Commit boundary")

	if d.onBoundary != nil {
		d.onBoundary(d.root, commit)
	}
}

// LastKnownCommit returns the most recently resolved commit identifier.
func (d *CommitBoundaryDetector) LastKnownCommit() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastKnownCommit
}

// Stop tears the detector down and waits for its loop to exit.
func (d *CommitBoundaryDetector) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.done != nil {
		<-d.done
	}
}
