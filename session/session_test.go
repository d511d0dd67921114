package session

import (
	"testing"

	"github.com/grovetools/lookout/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFileTracking(t *testing.T) {
	t.Run("baseline migration preserves state", func(t *testing.T) {
		s := New("s1", "")
		s.SetBaseline([]git.FileStatus{{Path: "a.go", State: git.StateAdded}})

		s.MoveBaselineToSession("a.go")

		assert.NotContains(t, s.BaselineFiles(), "a.go")
		assert.Equal(t, git.StateAdded, s.SessionFiles()["a.go"])
	})

	t.Run("migrating an unknown path is a no-op", func(t *testing.T) {
		s := New("s1", "")
		s.MoveBaselineToSession("missing.go")
		assert.Empty(t, s.SessionFiles())
	})

	t.Run("modified never downgrades added or deleted", func(t *testing.T) {
		s := New("s1", "")
		s.AddSessionFile("a.go", git.StateAdded)
		s.AddSessionFile("a.go", git.StateModified)
		assert.Equal(t, git.StateAdded, s.SessionFiles()["a.go"])

		s.AddSessionFile("b.go", git.StateModified)
		s.AddSessionFile("b.go", git.StateDeleted)
		assert.Equal(t, git.StateDeleted, s.SessionFiles()["b.go"])
	})

	t.Run("removing the selected file clears the selection", func(t *testing.T) {
		s := New("s1", "")
		s.AddSessionFile("a.go", git.StateModified)
		s.SelectFile("a.go")

		s.RemoveSessionFile("a.go")

		assert.Empty(t, s.SelectedFile())
	})

	t.Run("accessors return snapshots", func(t *testing.T) {
		s := New("s1", "")
		s.AddSessionFile("a.go", git.StateModified)

		files := s.SessionFiles()
		delete(files, "a.go")

		assert.Contains(t, s.SessionFiles(), "a.go")
	})
}

func TestSessionShowDiff(t *testing.T) {
	s := New("s1", "")

	// Without a sink the diff is dropped
	s.ShowDiff(&git.DiffResult{Path: "a.go"})

	var got *git.DiffResult
	s.OnDiff(func(r *git.DiffResult) { got = r })
	s.ShowDiff(&git.DiffResult{Path: "b.go", Unified: "diff"})

	require.NotNil(t, got)
	assert.Equal(t, "b.go", got.Path)
}
