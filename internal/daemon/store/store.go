// Package store holds the daemon's in-memory state and its pub/sub fan-out
// to streaming clients.
package store

import (
	"sync"
	"time"

	"github.com/grovetools/lookout/watch"
)

// Store is the in-memory state store for the daemon. It is thread-safe and
// supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	state       *State
	subscribers map[chan Update]struct{}
}

// New creates an empty store stamped with the current start time.
func New() *Store {
	return &Store{
		state: &State{
			StartedAt: time.Now(),
			Roots:     make(map[string]string),
			Sessions:  make(map[string]*SessionInfo),
		},
		subscribers: make(map[chan Update]struct{}),
	}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.state
}

// GetSessions returns all session summaries.
func (s *Store) GetSessions() []*SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*SessionInfo, 0, len(s.state.Sessions))
	for _, info := range s.state.Sessions {
		result = append(result, info)
	}
	return result
}

// SetRoots replaces the watched-root map (root path to source mode).
func (s *Store) SetRoots(roots map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Roots = roots
}

// SetMetrics replaces the throughput snapshot.
func (s *Store) SetMetrics(m watch.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Metrics = m
}

// SetSessions replaces the session summaries and broadcasts the change.
func (s *Store) SetSessions(infos []*SessionInfo) {
	s.mu.Lock()
	newMap := make(map[string]*SessionInfo, len(infos))
	for _, info := range infos {
		newMap[info.ID] = info
	}
	s.state.Sessions = newMap
	s.mu.Unlock()

	s.broadcast(Update{Type: UpdateSessions, Source: "sessions", Payload: infos})
}

// NotifyFileChange broadcasts a delivered change notification.
func (s *Store) NotifyFileChange(change FileChange) {
	s.broadcast(Update{Type: UpdateFileChange, Source: "watch", Payload: change})
}

// NotifyCommit broadcasts a commit-boundary reconciliation.
func (s *Store) NotifyCommit(notice CommitNotice) {
	s.broadcast(Update{Type: UpdateCommit, Source: "watch", Payload: notice})
}

// BroadcastConfigReload notifies clients that the configuration file changed.
func (s *Store) BroadcastConfigReload(file string) {
	s.broadcast(Update{Type: UpdateConfigReload, Source: "config", Payload: file})
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, ch)
	close(ch)
}

func (s *Store) broadcast(u Update) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send so a slow client never stalls the daemon
		}
	}
}
