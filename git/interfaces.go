package git

import "context"

// StatusProvider defines the interface for structured repository status
// queries. The watch pipeline consumes this; tests supply fakes.
type StatusProvider interface {
	// GetChanges returns the index and working-tree change lists for root.
	GetChanges(ctx context.Context, root string) (*Changes, error)

	// ListUncommittedFiles returns the union of index and working-tree
	// changes, deduplicated by path.
	ListUncommittedFiles(ctx context.Context, root string) ([]FileStatus, error)

	// CurrentCommit resolves the commit identifier HEAD points at.
	CurrentCommit(ctx context.Context, root string) (string, error)

	// IsGitRepo reports whether a repository maps to the directory.
	IsGitRepo(ctx context.Context, dir string) bool

	// GitDir returns the repository metadata directory for the worktree.
	GitDir(ctx context.Context, dir string) (string, error)
}

// DiffProvider computes the outstanding diff for a single file. A nil result
// with a nil error means the file has no outstanding change.
type DiffProvider interface {
	ComputeDiff(ctx context.Context, root, relPath string) (*DiffResult, error)
}
