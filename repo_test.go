package git_test

import (
	"path/filepath"
	"testing"

	git "github.com/goabstract/git-index"
	"github.com/goabstract/git-index/ginternals/config"
	"github.com/goabstract/git-index/internal/testhelper"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemRepositoryConfig(t *testing.T) *config.Config {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0o755))

	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       "/repo/.git",
		WorkTreePath:     "/repo",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}

func TestInitRepository(t *testing.T) {
	t.Parallel()

	t.Run("should create a working repo on disk", func(t *testing.T) {
		t.Parallel()

		dir, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		r, err := git.InitRepository(dir)
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		info, err := r.Config().FS.Stat(filepath.Join(dir, ".git"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("should fail on an already initialized repo", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		_, err = git.InitRepositoryWithOptions(cfg, git.Options{})
		require.Error(t, err)
		assert.Equal(t, git.ErrRepositoryExists, err)
	})

	t.Run("should honor the initial branch option", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{InitialBranch: "main"})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		ref, err := r.GetReference("HEAD")
		require.NoError(t, err)
		assert.Equal(t, "refs/heads/main", ref.SymbolicTarget())
	})
}

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	t.Run("should fail on a directory with no repo", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		_, err := git.OpenRepositoryWithOptions(cfg, git.Options{})
		require.Error(t, err)
		assert.Equal(t, git.ErrRepositoryNotExist, err)
	})

	t.Run("should open an initialized repo", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		require.NoError(t, r.Close())

		r, err = git.OpenRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})
		assert.False(t, r.IsBare())
	})
}

func TestNewBlob(t *testing.T) {
	t.Parallel()

	cfg := newMemRepositoryConfig(t)
	r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, r.Close())
	})

	blob, err := r.NewBlob([]byte("hi\n"))
	require.NoError(t, err)
	assert.Equal(t, "45b983be36b73c0788dc9cbcb76cbb80fc7bb057", blob.ID().String())
	assert.Equal(t, 3, blob.Size())

	o, err := r.GetObject(blob.ID())
	require.NoError(t, err)
	assert.Equal(t, []byte("hi\n"), o.Bytes())
}

func TestRepositoryIndex(t *testing.T) {
	t.Parallel()

	t.Run("should lazily create an empty index", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		idx, err := r.Index()
		require.NoError(t, err)
		assert.Equal(t, 0, idx.Len())
	})

	t.Run("should notify on index change", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		notified := 0
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{
			OnIndexChange: func() { notified++ },
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		require.NoError(t, afero.WriteFile(cfg.FS, "/repo/a.txt", []byte("hi\n"), 0o644))

		idx, err := r.Index()
		require.NoError(t, err)
		_, err = idx.Add("a.txt")
		require.NoError(t, err)
		require.NoError(t, idx.Write())
		assert.Equal(t, 1, notified)
	})
}
