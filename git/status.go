package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/lookout/command"
)

// FileState classifies an uncommitted file.
type FileState string

const (
	StateAdded    FileState = "added"
	StateModified FileState = "modified"
	StateDeleted  FileState = "deleted"
)

// FileStatus describes one uncommitted file in a repository.
type FileStatus struct {
	// Path is relative to the repository root.
	Path  string    `json:"path"`
	State FileState `json:"state"`
}

// Changes holds the per-file status of a repository, split the way git
// reports it: staged (index) entries and working-tree entries. The same path
// can appear in both lists.
type Changes struct {
	Index       []FileStatus `json:"index"`
	WorkingTree []FileStatus `json:"working_tree"`
}

// GetChanges returns the per-file uncommitted changes for the repository at
// the given path, parsed from `git status --porcelain=v2`.
func GetChanges(path string) (*Changes, error) {
	cmdBuilder := command.NewSafeBuilder()

	cmd, err := cmdBuilder.Build(context.Background(), "git", "status", "--porcelain=v2")
	if err != nil {
		return nil, fmt.Errorf("failed to build command: %w", err)
	}
	execCmd := cmd.Exec()
	execCmd.Dir = path
	output, err := execCmd.Output()
	if err != nil {
		outputStr := string(output)
		if strings.Contains(outputStr, "not a git repository") {
			return nil, fmt.Errorf("not a git repository: %s", path)
		}
		return nil, fmt.Errorf("failed to get git status: %w", err)
	}

	return ParseChanges(string(output)), nil
}

// ParseChanges parses `git status --porcelain=v2` output into per-file
// index and working-tree change lists.
func ParseChanges(output string) *Changes {
	changes := &Changes{}

	for _, line := range strings.Split(output, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch line[0] {
		case '?':
			// Untracked files are working-tree additions
			if len(line) > 2 {
				changes.WorkingTree = append(changes.WorkingTree, FileStatus{
					Path:  line[2:],
					State: StateAdded,
				})
			}
		case '1':
			// 1 XY sub mH mI mW hH hI path
			parts := strings.SplitN(line, " ", 9)
			if len(parts) < 9 {
				continue
			}
			appendEntry(changes, parts[1], parts[8])
		case '2':
			// 2 XY sub mH mI mW hH hI Xscore path<TAB>origPath
			parts := strings.SplitN(line, " ", 10)
			if len(parts) < 10 {
				continue
			}
			pathField := parts[9]
			if idx := strings.IndexByte(pathField, '\t'); idx >= 0 {
				pathField = pathField[:idx]
			}
			appendEntry(changes, parts[1], pathField)
		case 'u':
			// Unmerged entries show up in both lists
			parts := strings.SplitN(line, " ", 11)
			if len(parts) < 11 {
				continue
			}
			changes.Index = append(changes.Index, FileStatus{Path: parts[10], State: StateModified})
			changes.WorkingTree = append(changes.WorkingTree, FileStatus{Path: parts[10], State: StateModified})
		}
	}

	return changes
}

// appendEntry routes a porcelain XY pair into the index and working-tree lists.
func appendEntry(changes *Changes, xy, path string) {
	if len(xy) < 2 {
		return
	}
	if state, ok := mapState(xy[0]); ok {
		changes.Index = append(changes.Index, FileStatus{Path: path, State: state})
	}
	if state, ok := mapState(xy[1]); ok {
		changes.WorkingTree = append(changes.WorkingTree, FileStatus{Path: path, State: state})
	}
}

func mapState(c byte) (FileState, bool) {
	switch c {
	case '.':
		return "", false
	case 'A':
		return StateAdded, true
	case 'D':
		return StateDeleted, true
	default:
		// M, R, C, T and anything else git grows
		return StateModified, true
	}
}

// ListUncommittedFiles returns the union of index and working-tree changes,
// deduplicated by path. The first occurrence per path wins.
func ListUncommittedFiles(path string) ([]FileStatus, error) {
	changes, err := GetChanges(path)
	if err != nil {
		return nil, err
	}
	return changes.Union(), nil
}

// Union merges the working-tree and index lists, deduplicated by path with
// the first occurrence winning.
func (c *Changes) Union() []FileStatus {
	seen := make(map[string]bool, len(c.WorkingTree)+len(c.Index))
	var result []FileStatus
	for _, list := range [][]FileStatus{c.WorkingTree, c.Index} {
		for _, fs := range list {
			if seen[fs.Path] {
				continue
			}
			seen[fs.Path] = true
			result = append(result, fs)
		}
	}
	return result
}
