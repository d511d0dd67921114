package store

import (
	"testing"

	"github.com/grovetools/lookout/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSnapshot(t *testing.T) {
	s := New()
	assert.False(t, s.Get().StartedAt.IsZero())

	s.SetRoots(map[string]string{"/repo": "structured"})
	s.SetMetrics(watch.Metrics{EventsLast10s: 5})

	state := s.Get()
	assert.Equal(t, "structured", state.Roots["/repo"])
	assert.Equal(t, 5, state.Metrics.EventsLast10s)
}

func TestStoreBroadcast(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.NotifyFileChange(FileChange{Root: "/repo", Path: "a.go", Kind: "modified"})

	update := <-ch
	assert.Equal(t, UpdateFileChange, update.Type)
	change, ok := update.Payload.(FileChange)
	require.True(t, ok)
	assert.Equal(t, "a.go", change.Path)
}

func TestStoreSlowSubscriberDoesNotBlock(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	// Overflow the buffered channel; sends must not block
	for i := 0; i < 250; i++ {
		s.NotifyCommit(CommitNotice{Root: "/repo", Commit: "abc"})
	}

	assert.Len(t, ch, 100)
}

func TestSetSessionsRebuildsMap(t *testing.T) {
	s := New()
	s.SetSessions([]*SessionInfo{
		{ID: "s1", TrackedCount: 2},
		{ID: "s2", TrackedCount: 0},
	})

	state := s.Get()
	require.Len(t, state.Sessions, 2)
	assert.Equal(t, 2, state.Sessions["s1"].TrackedCount)

	s.SetSessions([]*SessionInfo{{ID: "s2"}})
	assert.Len(t, s.Get().Sessions, 1)
}
