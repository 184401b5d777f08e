package fsutil_test

import (
	"testing"

	"github.com/goabstract/git-index/internal/fsutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanExecute(t *testing.T) {
	t.Parallel()

	t.Run("should report a 0644 file as not executable", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/a.sh", []byte("#!/bin/sh\n"), 0o644))

		ok, err := fsutil.CanExecute(fs, "/a.sh")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should report a 0755 file as executable", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/a.sh", []byte("#!/bin/sh\n"), 0o755))

		ok, err := fsutil.CanExecute(fs, "/a.sh")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSetExecute(t *testing.T) {
	t.Parallel()

	t.Run("should set the executable bits", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/a.sh", []byte("#!/bin/sh\n"), 0o644))

		require.NoError(t, fsutil.SetExecute(fs, "/a.sh", true))
		ok, err := fsutil.CanExecute(fs, "/a.sh")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should clear the executable bits", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/a.sh", []byte("#!/bin/sh\n"), 0o755))

		require.NoError(t, fsutil.SetExecute(fs, "/a.sh", false))
		ok, err := fsutil.CanExecute(fs, "/a.sh")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
