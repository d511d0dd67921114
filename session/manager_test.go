package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsFor(t *testing.T) {
	m := NewManager("/main")

	plain := New("plain", "")
	other := New("other", "")
	dedicated := New("dedicated", "/worktrees/feature")
	m.Register(plain)
	m.Register(other)
	m.Register(dedicated)

	t.Run("main root reaches sessions without a dedicated worktree", func(t *testing.T) {
		scoped := m.SessionsFor("/main")
		require.Len(t, scoped, 2)
		assert.Equal(t, "other", scoped[0].ID())
		assert.Equal(t, "plain", scoped[1].ID())
	})

	t.Run("worktree root reaches only its owning session", func(t *testing.T) {
		scoped := m.SessionsFor("/worktrees/feature")
		require.Len(t, scoped, 1)
		assert.Equal(t, "dedicated", scoped[0].ID())
	})

	t.Run("unknown root reaches nobody", func(t *testing.T) {
		assert.Empty(t, m.SessionsFor("/elsewhere"))
	})

	t.Run("removed sessions stop receiving", func(t *testing.T) {
		m.Remove("plain")
		scoped := m.SessionsFor("/main")
		require.Len(t, scoped, 1)
		assert.Equal(t, "other", scoped[0].ID())
	})
}

func TestPatternPropagation(t *testing.T) {
	m := NewManager("/main")

	var gotRoot string
	var gotPatterns []string
	m.OnPatternsChanged(func(root string, patterns []string) {
		gotRoot = root
		gotPatterns = patterns
	})

	s := New("s1", "")
	s.SetIncludePatterns([]string{"*.md"})
	m.Register(s)

	assert.Equal(t, "/main", gotRoot)
	assert.Equal(t, []string{"*.md"}, gotPatterns)

	t.Run("patterns merge and dedupe across sessions", func(t *testing.T) {
		s2 := New("s2", "")
		s2.SetIncludePatterns([]string{"*.md", "notes/*.txt"})
		m.Register(s2)

		assert.Equal(t, []string{"*.md", "notes/*.txt"}, m.PatternsFor("/main"))
	})

	t.Run("replacing one session's patterns re-merges", func(t *testing.T) {
		m.SetSessionPatterns("s1", nil)
		assert.Equal(t, []string{"*.md", "notes/*.txt"}, gotPatterns)

		m.SetSessionPatterns("s2", []string{"scratch.txt"})
		assert.Equal(t, []string{"scratch.txt"}, gotPatterns)
	})

	t.Run("worktree session patterns scope to its root", func(t *testing.T) {
		wt := New("wt", "/worktrees/feature")
		wt.SetIncludePatterns([]string{"*.log"})
		m.Register(wt)

		assert.Equal(t, "/worktrees/feature", gotRoot)
		assert.Equal(t, []string{"*.log"}, gotPatterns)
		assert.NotContains(t, m.PatternsFor("/main"), "*.log")
	})
}
