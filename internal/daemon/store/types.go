package store

import (
	"time"

	"github.com/grovetools/lookout/watch"
)

// UpdateType identifies what kind of state change an Update carries.
type UpdateType string

const (
	// UpdateFileChange is a delivered file-change notification.
	UpdateFileChange UpdateType = "file_change"
	// UpdateCommit is a commit-boundary reconciliation.
	UpdateCommit UpdateType = "commit"
	// UpdateSessions replaces the session summary set.
	UpdateSessions UpdateType = "sessions"
	// UpdateConfigReload signals that the configuration file changed on disk.
	UpdateConfigReload UpdateType = "config_reload"
)

// Update is one broadcastable state change.
type Update struct {
	Type    UpdateType `json:"type"`
	Source  string     `json:"source,omitempty"`
	Payload any        `json:"payload,omitempty"`
}

// SessionInfo is the externally visible summary of one review session.
type SessionInfo struct {
	ID            string `json:"id"`
	WorktreeRoot  string `json:"worktree_root,omitempty"`
	BaselineCount int    `json:"baseline_count"`
	TrackedCount  int    `json:"tracked_count"`
	SelectedFile  string `json:"selected_file,omitempty"`
}

// FileChange is the payload of an UpdateFileChange.
type FileChange struct {
	Root string    `json:"root"`
	Path string    `json:"path"`
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// CommitNotice is the payload of an UpdateCommit.
type CommitNotice struct {
	Root   string `json:"root"`
	Commit string `json:"commit"`
	Dirty  int    `json:"dirty"`
}

// State is the complete daemon state snapshot.
type State struct {
	StartedAt time.Time               `json:"started_at"`
	Roots     map[string]string       `json:"roots"`
	Sessions  map[string]*SessionInfo `json:"sessions"`
	Metrics   watch.Metrics           `json:"metrics"`
}
