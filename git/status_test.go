package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runGitCommand is a test helper to execute git commands.
func runGitCommand(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s failed with output: %s", strings.Join(args, " "), string(output))
}

// setupGitRepo creates a test git repository.
func setupGitRepo(t *testing.T, dir string) {
	t.Helper()
	runGitCommand(t, dir, "init")
	runGitCommand(t, dir, "config", "user.email", "test@example.com")
	runGitCommand(t, dir, "config", "user.name", "Test User")
}

func TestParseChanges(t *testing.T) {
	t.Run("empty output", func(t *testing.T) {
		changes := ParseChanges("")
		assert.Empty(t, changes.Index)
		assert.Empty(t, changes.WorkingTree)
	})

	t.Run("headers are skipped", func(t *testing.T) {
		changes := ParseChanges("# branch.head main\n# branch.ab +0 -0\n")
		assert.Empty(t, changes.Union())
	})

	t.Run("untracked file", func(t *testing.T) {
		changes := ParseChanges("? notes.md\n")
		require.Len(t, changes.WorkingTree, 1)
		assert.Equal(t, "notes.md", changes.WorkingTree[0].Path)
		assert.Equal(t, StateAdded, changes.WorkingTree[0].State)
		assert.Empty(t, changes.Index)
	})

	t.Run("staged and modified", func(t *testing.T) {
		// Staged add in the index, further edit in the working tree
		changes := ParseChanges("1 AM N... 000000 100644 100644 0000000 1234567 src/app.go\n")
		require.Len(t, changes.Index, 1)
		assert.Equal(t, FileStatus{Path: "src/app.go", State: StateAdded}, changes.Index[0])
		require.Len(t, changes.WorkingTree, 1)
		assert.Equal(t, FileStatus{Path: "src/app.go", State: StateModified}, changes.WorkingTree[0])
	})

	t.Run("deleted in working tree", func(t *testing.T) {
		changes := ParseChanges("1 .D N... 100644 100644 000000 1234567 1234567 gone.txt\n")
		assert.Empty(t, changes.Index)
		require.Len(t, changes.WorkingTree, 1)
		assert.Equal(t, StateDeleted, changes.WorkingTree[0].State)
	})

	t.Run("rename keeps new path", func(t *testing.T) {
		changes := ParseChanges("2 R. N... 100644 100644 100644 1234567 1234567 R100 new.go\told.go\n")
		require.Len(t, changes.Index, 1)
		assert.Equal(t, "new.go", changes.Index[0].Path)
		assert.Equal(t, StateModified, changes.Index[0].State)
	})

	t.Run("path with spaces", func(t *testing.T) {
		changes := ParseChanges("1 .M N... 100644 100644 100644 1234567 1234567 docs/read me.md\n")
		require.Len(t, changes.WorkingTree, 1)
		assert.Equal(t, "docs/read me.md", changes.WorkingTree[0].Path)
	})
}

func TestChangesUnion(t *testing.T) {
	changes := &Changes{
		Index: []FileStatus{
			{Path: "a.go", State: StateAdded},
			{Path: "b.go", State: StateModified},
		},
		WorkingTree: []FileStatus{
			{Path: "a.go", State: StateModified},
			{Path: "c.go", State: StateDeleted},
		},
	}

	union := changes.Union()
	require.Len(t, union, 3)
	// Working tree is scanned first, so its entry for a.go wins
	assert.Equal(t, FileStatus{Path: "a.go", State: StateModified}, union[0])
	assert.Equal(t, FileStatus{Path: "c.go", State: StateDeleted}, union[1])
	assert.Equal(t, FileStatus{Path: "b.go", State: StateModified}, union[2])
}

func TestGetChanges(t *testing.T) {
	t.Run("non-git directory", func(t *testing.T) {
		_, err := GetChanges(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("repo with changes", func(t *testing.T) {
		tempDir := t.TempDir()
		setupGitRepo(t, tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "initial.txt"), []byte("initial"), 0644))
		runGitCommand(t, tempDir, "add", "initial.txt")
		runGitCommand(t, tempDir, "commit", "-m", "initial commit")

		// Staged new file
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "staged.txt"), []byte("staged"), 0644))
		runGitCommand(t, tempDir, "add", "staged.txt")

		// Working tree modification
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "initial.txt"), []byte("modified"), 0644))

		// Untracked file
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "untracked.txt"), []byte("untracked"), 0644))

		changes, err := GetChanges(tempDir)
		require.NoError(t, err)

		union := changes.Union()
		paths := make(map[string]FileState)
		for _, fs := range union {
			paths[fs.Path] = fs.State
		}
		assert.Equal(t, StateAdded, paths["staged.txt"])
		assert.Equal(t, StateModified, paths["initial.txt"])
		assert.Equal(t, StateAdded, paths["untracked.txt"])
	})
}

func TestGetHeadCommit(t *testing.T) {
	tempDir := t.TempDir()
	setupGitRepo(t, tempDir)

	// Unborn HEAD resolves to an error, not a commit
	_, err := GetHeadCommit(tempDir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "file.txt"), []byte("content"), 0644))
	runGitCommand(t, tempDir, "add", "file.txt")
	runGitCommand(t, tempDir, "commit", "-m", "initial commit")

	commit, err := GetHeadCommit(tempDir)
	require.NoError(t, err)
	assert.Len(t, commit, 40)
}
