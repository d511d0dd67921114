package git

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider serves a swappable change set for poller tests.
type scriptedProvider struct {
	changes *Changes
	err     error
}

func (p *scriptedProvider) GetChanges(context.Context, string) (*Changes, error) {
	return p.changes, p.err
}

func (p *scriptedProvider) ListUncommittedFiles(context.Context, string) ([]FileStatus, error) {
	if p.changes == nil {
		return nil, p.err
	}
	return p.changes.Union(), p.err
}

func (p *scriptedProvider) CurrentCommit(context.Context, string) (string, error) {
	return "", nil
}

func (p *scriptedProvider) IsGitRepo(context.Context, string) bool { return true }

func (p *scriptedProvider) GitDir(_ context.Context, dir string) (string, error) {
	return dir + "/.git", nil
}

func newTestPoller(provider StatusProvider) (*StatusPoller, *[]*Changes) {
	var fired []*Changes
	p := NewStatusPoller(provider, "/repo", 0, func(c *Changes) {
		fired = append(fired, c)
	})
	return p, &fired
}

func TestPollerFirstPollPrimesWithoutFiring(t *testing.T) {
	provider := &scriptedProvider{changes: &Changes{
		WorkingTree: []FileStatus{
			{Path: "pre-existing-a.go", State: StateModified},
			{Path: "pre-existing-b.go", State: StateModified},
		},
	}}
	p, fired := newTestPoller(provider)

	ctx := context.Background()

	// Files that were dirty before polling started are baseline, not changes
	p.Poll(ctx)
	assert.Empty(t, *fired)

	// Re-polling the unchanged state stays silent
	p.Poll(ctx)
	assert.Empty(t, *fired)

	// Only a genuine state move after priming fires
	provider.changes = &Changes{
		WorkingTree: []FileStatus{
			{Path: "pre-existing-a.go", State: StateModified},
			{Path: "pre-existing-b.go", State: StateModified},
			{Path: "fresh.go", State: StateAdded},
		},
	}
	p.Poll(ctx)
	require.Len(t, *fired, 1)
	assert.Len(t, (*fired)[0].Union(), 3)
}

func TestPollerCleanRepoPrimesOnEmptySnapshot(t *testing.T) {
	provider := &scriptedProvider{changes: &Changes{}}
	p, fired := newTestPoller(provider)

	ctx := context.Background()

	// A clean repository's snapshot is empty; priming must still consume it
	p.Poll(ctx)
	assert.Empty(t, *fired)

	provider.changes = &Changes{
		WorkingTree: []FileStatus{{Path: "new.go", State: StateAdded}},
	}
	p.Poll(ctx)
	require.Len(t, *fired, 1)
}

func TestPollerErrorDoesNotPrime(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("exit status 128")}
	p, fired := newTestPoller(provider)

	ctx := context.Background()

	// A failing poll is no-signal and must not count as the priming pass
	p.Poll(ctx)
	assert.Empty(t, *fired)

	provider.err = nil
	provider.changes = &Changes{
		WorkingTree: []FileStatus{{Path: "dirty.go", State: StateModified}},
	}
	p.Poll(ctx)
	assert.Empty(t, *fired, "first successful poll primes, it does not fire")

	provider.changes = &Changes{
		WorkingTree: []FileStatus{
			{Path: "dirty.go", State: StateModified},
			{Path: "later.go", State: StateAdded},
		},
	}
	p.Poll(ctx)
	assert.Len(t, *fired, 1)
}
