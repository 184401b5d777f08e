package env_test

import (
	"testing"

	"github.com/goabstract/git-index/env"
	"github.com/stretchr/testify/assert"
)

func TestNewFromKVList(t *testing.T) {
	t.Parallel()

	t.Run("should parse a valid list", func(t *testing.T) {
		t.Parallel()

		e := env.NewFromKVList([]string{
			"GIT_DIR=/tmp/repo/.git",
			"GIT_WORK_TREE=/tmp/repo",
		})
		assert.True(t, e.Has("GIT_DIR"))
		assert.Equal(t, "/tmp/repo/.git", e.Get("GIT_DIR"))
		assert.Equal(t, "/tmp/repo", e.Get("GIT_WORK_TREE"))
	})

	t.Run("should keep the = signs in values", func(t *testing.T) {
		t.Parallel()

		e := env.NewFromKVList([]string{"GIT_CONFIG=/tmp/conf=ig"})
		assert.Equal(t, "/tmp/conf=ig", e.Get("GIT_CONFIG"))
	})

	t.Run("should report missing keys", func(t *testing.T) {
		t.Parallel()

		e := env.NewFromKVList([]string{})
		assert.False(t, e.Has("GIT_DIR"))
		assert.Empty(t, e.Get("GIT_DIR"))
	})
}
