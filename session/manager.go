package session

import (
	"sort"
	"sync"

	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/logging"
	"github.com/grovetools/lookout/watch"
	"github.com/sirupsen/logrus"
)

var _ watch.Session = (*Session)(nil)

// Manager is the registry of live sessions for one main workspace. It
// implements the scoping rule the notification router fans out with: an
// event on a session's dedicated worktree root reaches only that session,
// while an event on the main root reaches every session without a dedicated
// worktree.
type Manager struct {
	mu       sync.RWMutex
	mainRoot string
	sessions map[string]*Session
	logger   *logrus.Entry

	// onPatternsChanged fires when the merged include patterns for a root
	// change so the engine can rebuild that root's filter.
	onPatternsChanged func(root string, patterns []string)
}

// NewManager creates a registry scoped to the given main workspace root.
func NewManager(mainRoot string) *Manager {
	return &Manager{
		mainRoot: mainRoot,
		sessions: make(map[string]*Session),
		logger:   logging.NewLogger("sessions"),
	}
}

// OnPatternsChanged installs the callback invoked when a root's merged
// session include patterns change.
func (m *Manager) OnPatternsChanged(fn func(root string, patterns []string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPatternsChanged = fn
}

// Register adds a session to the registry, replacing any session with the
// same identifier.
func (m *Manager) Register(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.logger.WithFields(logrus.Fields{
		"session":  s.ID(),
		"worktree": s.WorktreeRoot(),
	}).Info("Session registered")
	m.notifyPatterns(m.rootFor(s))
}

// Remove drops a session from the registry. Unknown identifiers are a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	m.logger.WithField("session", id).Info("Session removed")
	m.notifyPatterns(m.rootFor(s))
}

// Get returns the session with the given identifier, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// List returns all sessions ordered by identifier.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// SessionsFor implements the router's fan-out scoping for a root.
func (m *Manager) SessionsFor(root string) []watch.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var scoped []watch.Session
	for _, s := range m.sessions {
		switch {
		case s.WorktreeRoot() == root && root != "":
			scoped = append(scoped, s)
		case s.WorktreeRoot() == "" && root == m.mainRoot:
			scoped = append(scoped, s)
		}
	}
	sort.Slice(scoped, func(i, j int) bool { return scoped[i].ID() < scoped[j].ID() })
	return scoped
}

// PatternsFor returns the merged include patterns contributed by the
// sessions scoped to a root, deduplicated and sorted.
func (m *Manager) PatternsFor(root string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, s := range m.SessionsFor(root) {
		sess, ok := s.(*Session)
		if !ok {
			continue
		}
		for _, p := range sess.IncludePatterns() {
			if !seen[p] {
				seen[p] = true
				merged = append(merged, p)
			}
		}
	}
	sort.Strings(merged)
	return merged
}

// SetSessionPatterns replaces one session's include globs and propagates the
// root's merged pattern set.
func (m *Manager) SetSessionPatterns(id string, patterns []string) {
	s := m.Get(id)
	if s == nil {
		return
	}
	s.SetIncludePatterns(patterns)
	m.notifyPatterns(m.rootFor(s))
}

// SeedBaseline initializes a session's baseline from the current
// uncommitted file list of its root.
func (m *Manager) SeedBaseline(s *Session, uncommitted []git.FileStatus) {
	s.SetBaseline(uncommitted)
	m.logger.WithFields(logrus.Fields{
		"session":  s.ID(),
		"baseline": len(uncommitted),
	}).Debug("Baseline seeded")
}

// rootFor returns the root a session's events arrive on.
func (m *Manager) rootFor(s *Session) string {
	if wt := s.WorktreeRoot(); wt != "" {
		return wt
	}
	return m.mainRoot
}

func (m *Manager) notifyPatterns(root string) {
	m.mu.RLock()
	fn := m.onPatternsChanged
	m.mu.RUnlock()
	if fn != nil {
		fn(root, m.PatternsFor(root))
	}
}
