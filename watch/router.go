package watch

import (
	"context"

	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/logging"
	"github.com/sirupsen/logrus"
)

// Session is the consumer contract the router delivers into. The pipeline
// mutates a session only through these operations; it never reaches into
// consumer internals.
type Session interface {
	ID() string

	// WorktreeRoot is the session's dedicated worktree root, or empty when
	// the session reviews the main workspace.
	WorktreeRoot() string

	BaselineFiles() map[string]git.FileState
	SessionFiles() map[string]git.FileState
	SelectedFile() string

	MoveBaselineToSession(path string)
	AddSessionFile(path string, state git.FileState)
	RemoveSessionFile(path string)
	SetBaseline(entries []git.FileStatus)
	ShowDiff(result *git.DiffResult)
}

// SessionLookup returns the sessions scoped to a root. The registry of live
// sessions is external shared state; injecting the accessor keeps it out of
// the pipeline and lets tests supply deterministic session sets.
type SessionLookup func(root string) []Session

// NotificationRouter maps resolved change events onto the sessions that must
// hear about them and drives baseline/session-file reconciliation.
type NotificationRouter struct {
	sessions SessionLookup
	diff     git.DiffProvider
	filters  func(root string) *PatternFilter
	logger   *logrus.Entry
}

// NewNotificationRouter creates a router. filters supplies the current
// pattern filter per root, used for the unconditional whitelist flush on
// commit boundaries; it may return nil when a root has no filter.
func NewNotificationRouter(sessions SessionLookup, diff git.DiffProvider, filters func(root string) *PatternFilter) *NotificationRouter {
	return &NotificationRouter{
		sessions: sessions,
		diff:     diff,
		filters:  filters,
		logger:   logging.NewLogger("router"),
	}
}

// Notify delivers one change event to every session scoped to its root. A
// path present in a session's baseline migrates into its session files; an
// unknown path is added with the observed kind. The diff is recomputed when
// the session tracks its first file or the changed path is the selected one.
// A failing diff collaborator is logged and never aborts delivery to
// sibling sessions.
func (r *NotificationRouter) Notify(ctx context.Context, evt Event) {
	for _, session := range r.sessions(evt.Root) {
		r.notifyOne(ctx, session, evt)
	}
}

func (r *NotificationRouter) notifyOne(ctx context.Context, session Session, evt Event) {
	firstFile := len(session.SessionFiles()) == 0

	if _, inBaseline := session.BaselineFiles()[evt.RelPath]; inBaseline {
		session.MoveBaselineToSession(evt.RelPath)
	} else if _, tracked := session.SessionFiles()[evt.RelPath]; !tracked {
		session.AddSessionFile(evt.RelPath, evt.Kind.FileState())
	}

	if !firstFile && session.SelectedFile() != evt.RelPath {
		return
	}

	result, err := r.diff.ComputeDiff(ctx, evt.Root, evt.RelPath)
	if err != nil {
		// The file stays tracked; only its preview failed
		r.logger.WithError(err).WithFields(logrus.Fields{
			"session": session.ID(),
			"path":    evt.RelPath,
		}).Warn("Diff computation failed")
		return
	}
	if result == nil {
		// No outstanding change: evict
		session.RemoveSessionFile(evt.RelPath)
		return
	}
	session.ShowDiff(result)
}

// ReconcileCommit handles a commit boundary for a root: every session file
// that is no longer uncommitted, or that matches the whitelist, is evicted,
// and the baseline is overwritten wholesale with the fresh uncommitted list.
// Whitelist files are gitignored-but-tracked, so their git status never
// naturally clears them; they are flushed unconditionally on every commit.
func (r *NotificationRouter) ReconcileCommit(root string, uncommitted []git.FileStatus) {
	stillDirty := make(map[string]bool, len(uncommitted))
	for _, fs := range uncommitted {
		stillDirty[fs.Path] = true
	}

	var filter *PatternFilter
	if r.filters != nil {
		filter = r.filters(root)
	}

	for _, session := range r.sessions(root) {
		for path := range session.SessionFiles() {
			whitelisted := filter != nil && filter.MatchesInclude(path)
			if !stillDirty[path] || whitelisted {
				session.RemoveSessionFile(path)
			}
		}
		session.SetBaseline(uncommitted)
	}
}
