package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldTrack(t *testing.T) {
	t.Run("unmatched paths are tracked by default", func(t *testing.T) {
		filter, err := NewPatternFilter(nil, nil)
		require.NoError(t, err)

		assert.True(t, filter.ShouldTrack("main.go"))
		assert.True(t, filter.ShouldTrack("src/app/handler.go"))
	})

	t.Run("ignore patterns exclude", func(t *testing.T) {
		filter, err := NewPatternFilter([]string{"*.log", "build"}, nil)
		require.NoError(t, err)

		assert.False(t, filter.ShouldTrack("debug.log"))
		assert.False(t, filter.ShouldTrack("build/out.bin"))
		assert.True(t, filter.ShouldTrack("main.go"))
	})

	t.Run("include overrides ignore", func(t *testing.T) {
		filter, err := NewPatternFilter([]string{"*.log"}, []string{"important.log"})
		require.NoError(t, err)

		assert.True(t, filter.ShouldTrack("important.log"))
		assert.False(t, filter.ShouldTrack("other.log"))
	})

	t.Run("internal directories are always excluded", func(t *testing.T) {
		filter, err := NewPatternFilter(nil, nil)
		require.NoError(t, err)

		assert.False(t, filter.ShouldTrack(".git/HEAD"))
		assert.False(t, filter.ShouldTrack(".git/refs/heads/main"))
		assert.False(t, filter.ShouldTrack(".lookout/logs/engine.log"))
	})

	t.Run("include does not reach into internal directories by default", func(t *testing.T) {
		filter, err := NewPatternFilter(nil, []string{"*.go"})
		require.NoError(t, err)

		assert.True(t, filter.ShouldTrack("cmd/main.go"))
		assert.False(t, filter.ShouldTrack(".lookout/state.db"))
	})
}

func TestMatchesInclude(t *testing.T) {
	filter, err := NewPatternFilter(nil, []string{"notes/*.md", "scratch.txt"})
	require.NoError(t, err)

	assert.True(t, filter.MatchesInclude("notes/todo.md"))
	assert.True(t, filter.MatchesInclude("scratch.txt"))
	assert.False(t, filter.MatchesInclude("notes/todo.txt"))
	assert.False(t, filter.MatchesInclude("main.go"))

	empty, err := NewPatternFilter(nil, nil)
	require.NoError(t, err)
	assert.False(t, empty.MatchesInclude("notes/todo.md"))
	assert.False(t, empty.HasIncludes())
	assert.True(t, filter.HasIncludes())
}

func TestMatchesIgnore(t *testing.T) {
	filter, err := NewPatternFilter([]string{"*.log"}, []string{"*.log", "notes.md"})
	require.NoError(t, err)

	// The include override does not apply here: the probe asks what the
	// status feed can see, not what should be tracked
	assert.True(t, filter.MatchesIgnore("app.log"))
	assert.True(t, filter.MatchesIgnore(".git/HEAD"))
	assert.False(t, filter.MatchesIgnore("notes.md"))
	assert.False(t, filter.MatchesIgnore("main.go"))
}

func TestLoadIgnorePatterns(t *testing.T) {
	t.Run("reads patterns and strips comments", func(t *testing.T) {
		dir := t.TempDir()
		content := "# build output\nbuild/\n\n*.log\n  node_modules  \n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644))

		patterns := LoadIgnorePatterns(dir)
		assert.Equal(t, []string{"build/", "*.log", "node_modules"}, patterns)
	})

	t.Run("missing file yields no patterns", func(t *testing.T) {
		patterns := LoadIgnorePatterns(t.TempDir())
		assert.Empty(t, patterns)
	})
}
