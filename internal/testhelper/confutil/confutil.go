// Package confutil contains helpers to create configs for tests
package confutil

import (
	"path/filepath"
	"testing"

	"github.com/goabstract/git-index/ginternals/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// NewCommonConfig returns a config for a repo located in the
// given directory
func NewCommonConfig(t *testing.T, repoRoot string) *config.Config {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: repoRoot,
		GitDirPath:       filepath.Join(repoRoot, ".git"),
		WorkTreePath:     repoRoot,
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}

// NewMemConfig returns a config backed by an in-memory filesystem,
// for a repo located at /repo
func NewMemConfig(t *testing.T) *config.Config {
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
