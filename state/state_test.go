package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	root := t.TempDir()

	s, err := Load(root)
	require.NoError(t, err)
	assert.Empty(t, s)

	s.Set("last_commit", "abc123")
	s.Set("events_seen", 42)
	require.NoError(t, Save(root, s))

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "abc123", loaded.GetString("last_commit"))

	v, ok := loaded.Get("events_seen")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestUpdateSingleKey(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Update(root, "last_commit", "aaa"))
	require.NoError(t, Update(root, "selected", "main.go"))

	s, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "aaa", s.GetString("last_commit"))
	assert.Equal(t, "main.go", s.GetString("selected"))
}

func TestGetStringIgnoresWrongTypes(t *testing.T) {
	s := State{"count": 3}
	assert.Empty(t, s.GetString("count"))
	assert.Empty(t, s.GetString("missing"))
}
