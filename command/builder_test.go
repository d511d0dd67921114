package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("empty command name", func(t *testing.T) {
		_, err := sb.Build(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(context.Background(), "git", "status")
		require.NoError(t, err)
		execCmd := cmd.Exec()
		assert.Contains(t, execCmd.Path, "git")
		assert.Equal(t, []string{"git", "status"}, execCmd.Args)
	})
}

func TestValidate(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("gitRef", func(t *testing.T) {
		assert.NoError(t, sb.Validate("gitRef", "feature/watch-pipeline"))
		assert.Error(t, sb.Validate("gitRef", ""))
		assert.Error(t, sb.Validate("gitRef", "bad ref; rm -rf"))
	})

	t.Run("fileName", func(t *testing.T) {
		assert.NoError(t, sb.Validate("fileName", "src/watch/debounce.go"))
		assert.Error(t, sb.Validate("fileName", "../escape"))
		assert.Error(t, sb.Validate("fileName", "a;b"))
	})

	t.Run("unknown validator", func(t *testing.T) {
		assert.Error(t, sb.Validate("nope", "value"))
	})
}
