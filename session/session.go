// Package session holds the in-memory review-session registry: which
// worktree each session reviews, which files it is tracking, and which file
// its reviewer currently has selected.
package session

import (
	"sync"

	"github.com/grovetools/lookout/git"
)

// Session is one live review session. All mutation goes through methods; the
// maps returned by the accessors are snapshots.
type Session struct {
	mu sync.RWMutex

	id           string
	worktreeRoot string

	baseline map[string]git.FileState
	files    map[string]git.FileState
	selected string

	includePatterns []string

	// onDiff receives recomputed diffs for display; nil drops them.
	onDiff func(*git.DiffResult)
}

// New creates a session. worktreeRoot is empty when the session reviews the
// main workspace rather than a dedicated worktree.
func New(id, worktreeRoot string) *Session {
	return &Session{
		id:           id,
		worktreeRoot: worktreeRoot,
		baseline:     make(map[string]git.FileState),
		files:        make(map[string]git.FileState),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// WorktreeRoot returns the dedicated worktree root, or empty for a
// main-workspace session.
func (s *Session) WorktreeRoot() string { return s.worktreeRoot }

// BaselineFiles returns a snapshot of the files that were already
// uncommitted when the session attached (or at the last commit boundary).
func (s *Session) BaselineFiles() map[string]git.FileState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStates(s.baseline)
}

// SessionFiles returns a snapshot of the files changed during the session.
func (s *Session) SessionFiles() map[string]git.FileState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStates(s.files)
}

// SelectedFile returns the path the reviewer currently has selected, or
// empty when nothing is selected.
func (s *Session) SelectedFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectFile records the reviewer's selection.
func (s *Session) SelectFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = path
}

// MoveBaselineToSession migrates a path from the baseline into the session
// files, preserving the state it carried in the baseline. Unknown paths are
// a no-op.
func (s *Session) MoveBaselineToSession(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.baseline[path]
	if !ok {
		return
	}
	delete(s.baseline, path)
	s.files[path] = state
}

// AddSessionFile tracks a path with the given state. An existing entry is
// upgraded to deleted or added but never downgraded back to modified.
func (s *Session) AddSessionFile(path string, state git.FileState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.files[path]; ok && state == git.StateModified && existing != git.StateModified {
		return
	}
	s.files[path] = state
}

// RemoveSessionFile stops tracking a path.
func (s *Session) RemoveSessionFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	if s.selected == path {
		s.selected = ""
	}
}

// SetBaseline overwrites the baseline wholesale with the given entries.
func (s *Session) SetBaseline(entries []git.FileStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = make(map[string]git.FileState, len(entries))
	for _, e := range entries {
		s.baseline[e.Path] = e.State
	}
}

// ShowDiff forwards a recomputed diff to the session's display sink.
func (s *Session) ShowDiff(result *git.DiffResult) {
	s.mu.RLock()
	sink := s.onDiff
	s.mu.RUnlock()
	if sink != nil {
		sink(result)
	}
}

// OnDiff installs the display sink invoked by ShowDiff.
func (s *Session) OnDiff(fn func(*git.DiffResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDiff = fn
}

// IncludePatterns returns the session's extra include globs.
func (s *Session) IncludePatterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.includePatterns))
	copy(out, s.includePatterns)
	return out
}

// SetIncludePatterns replaces the session's extra include globs.
func (s *Session) SetIncludePatterns(patterns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.includePatterns = make([]string, len(patterns))
	copy(s.includePatterns, patterns)
}

func copyStates(in map[string]git.FileState) map[string]git.FileState {
	out := make(map[string]git.FileState, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
