package pathutil_test

import (
	"path/filepath"
	"testing"

	"github.com/goabstract/git-index/internal/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkTreeRelPath(t *testing.T) {
	t.Parallel()

	wt := filepath.Join("/", "home", "user", "project")

	t.Run("should strip the working tree prefix", func(t *testing.T) {
		t.Parallel()

		rel, err := pathutil.WorkTreeRelPath(wt, filepath.Join(wt, "pkg", "a.go"))
		require.NoError(t, err)
		assert.Equal(t, "pkg/a.go", rel)
	})

	t.Run("should accept a path already relative to the working tree", func(t *testing.T) {
		t.Parallel()

		rel, err := pathutil.WorkTreeRelPath(wt, filepath.Join("pkg", "a.go"))
		require.NoError(t, err)
		assert.Equal(t, "pkg/a.go", rel)
	})

	t.Run("should reject a file outside the working tree", func(t *testing.T) {
		t.Parallel()

		_, err := pathutil.WorkTreeRelPath(wt, filepath.Join("/", "etc", "passwd"))
		require.Error(t, err)
		assert.ErrorIs(t, err, pathutil.ErrOutsideWorkTree)
	})

	t.Run("should reject the parent of the working tree", func(t *testing.T) {
		t.Parallel()

		_, err := pathutil.WorkTreeRelPath(wt, filepath.Join(wt, ".."))
		require.Error(t, err)
		assert.ErrorIs(t, err, pathutil.ErrOutsideWorkTree)
	})
}
