package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/lookout/command"
)

// DiffResult holds the outstanding diff for a single file.
type DiffResult struct {
	Path         string `json:"path"`
	Unified      string `json:"unified"`
	LinesAdded   int    `json:"lines_added"`
	LinesDeleted int    `json:"lines_deleted"`
}

// ComputeDiff returns the outstanding diff for relPath in the repository at
// root, combining working-tree and staged changes. Untracked files diff
// against /dev/null. Returns (nil, nil) when the file has no outstanding
// change, which signals the caller to evict it.
func ComputeDiff(ctx context.Context, root, relPath string) (*DiffResult, error) {
	cmdBuilder := command.NewSafeBuilder()
	if err := cmdBuilder.Validate("fileName", relPath); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	result := &DiffResult{Path: relPath}

	worktree, err := runDiff(ctx, cmdBuilder, root, "diff", "--", relPath)
	if err != nil {
		return nil, err
	}
	staged, err := runDiff(ctx, cmdBuilder, root, "diff", "--cached", "--", relPath)
	if err != nil {
		return nil, err
	}

	result.Unified = staged + worktree

	if result.Unified == "" {
		// Tracked diffs are empty; the file may be untracked
		untracked, err := untrackedDiff(ctx, cmdBuilder, root, relPath)
		if err != nil {
			return nil, err
		}
		if untracked == "" {
			// No outstanding change at all
			return nil, nil
		}
		result.Unified = untracked
	}

	added, deleted := countNumstat(result.Unified)
	result.LinesAdded = added
	result.LinesDeleted = deleted

	return result, nil
}

// runDiff executes a git diff variant and returns its output. A missing or
// vanished path produces empty output, not an error.
func runDiff(ctx context.Context, cmdBuilder *command.SafeBuilder, root string, args ...string) (string, error) {
	cmd, err := cmdBuilder.Build(ctx, "git", args...)
	if err != nil {
		return "", fmt.Errorf("failed to build diff command: %w", err)
	}
	execCmd := cmd.Exec()
	execCmd.Dir = root
	output, err := execCmd.Output()
	if err != nil {
		// git diff exits non-zero for damaged input; treat as no diff
		return "", nil
	}
	return string(output), nil
}

// untrackedDiff diffs an untracked file against /dev/null. git exits 1 when
// the diff is non-empty, so the exit code is not an error signal here.
func untrackedDiff(ctx context.Context, cmdBuilder *command.SafeBuilder, root, relPath string) (string, error) {
	cmd, err := cmdBuilder.Build(ctx, "git", "diff", "--no-index", "--", "/dev/null", relPath)
	if err != nil {
		return "", fmt.Errorf("failed to build diff command: %w", err)
	}
	execCmd := cmd.Exec()
	execCmd.Dir = root
	output, _ := execCmd.Output()
	return string(output), nil
}

// countNumstat counts added and deleted lines in a unified diff body.
func countNumstat(unified string) (added, deleted int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			deleted++
		}
	}
	return added, deleted
}
