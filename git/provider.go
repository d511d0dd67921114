package git

import "context"

// CLIProvider implements StatusProvider and DiffProvider using the git CLI.
type CLIProvider struct{}

// Ensure it implements the interfaces
var (
	_ StatusProvider = (*CLIProvider)(nil)
	_ DiffProvider   = (*CLIProvider)(nil)
)

// NewCLIProvider creates a new CLI status provider
func NewCLIProvider() *CLIProvider {
	return &CLIProvider{}
}

// GetChanges returns the per-file index and working-tree changes for root.
func (p *CLIProvider) GetChanges(ctx context.Context, root string) (*Changes, error) {
	return GetChanges(root)
}

// ListUncommittedFiles returns the deduplicated union of all changes for root.
func (p *CLIProvider) ListUncommittedFiles(ctx context.Context, root string) ([]FileStatus, error) {
	return ListUncommittedFiles(root)
}

// CurrentCommit resolves HEAD for root.
func (p *CLIProvider) CurrentCommit(ctx context.Context, root string) (string, error) {
	return GetHeadCommit(root)
}

// IsGitRepo checks if a directory is inside a git repository
func (p *CLIProvider) IsGitRepo(ctx context.Context, dir string) bool {
	return IsGitRepo(dir)
}

// GitDir returns the repository metadata directory for the worktree.
func (p *CLIProvider) GitDir(ctx context.Context, dir string) (string, error) {
	return GetGitDir(dir)
}

// ComputeDiff computes the outstanding diff for a single file.
func (p *CLIProvider) ComputeDiff(ctx context.Context, root, relPath string) (*DiffResult, error) {
	return ComputeDiff(ctx, root, relPath)
}
