// Package watch implements the multi-source file-change detection and
// per-session notification pipeline: it decides which file mutations matter,
// coalesces bursts, deduplicates redundant signals from the structured and
// raw change sources, and fans results out to the review sessions scoped to
// each watched root.
package watch

import (
	"time"

	"github.com/grovetools/lookout/git"
)

// ChangeKind classifies a reported file mutation.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// FileState maps a change kind onto the session file-state vocabulary.
// Unclassifiable changes default to modified.
func (k ChangeKind) FileState() git.FileState {
	switch k {
	case ChangeCreated:
		return git.StateAdded
	case ChangeDeleted:
		return git.StateDeleted
	default:
		return git.StateModified
	}
}

// KindFromState converts a git file state into a change kind.
func KindFromState(s git.FileState) ChangeKind {
	switch s {
	case git.StateAdded:
		return ChangeCreated
	case git.StateDeleted:
		return ChangeDeleted
	default:
		return ChangeModified
	}
}

// Event is one filtered, deduplicated, debounced change notification.
type Event struct {
	Root     string
	RelPath  string
	FileName string
	Kind     ChangeKind
	At       time.Time
}

// WatchMode identifies which change-source variant a root runs.
type WatchMode string

const (
	// ModeStructured means the root is fed by the structured git-status poller.
	ModeStructured WatchMode = "structured"
	// ModeRaw means the root fell back to raw filesystem events.
	ModeRaw WatchMode = "raw"
)
