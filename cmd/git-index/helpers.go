package main

import (
	git "github.com/goabstract/git-index"
	gitconfig "github.com/goabstract/git-index/ginternals/config"
)

func loadRepository(cfg *config) (*git.Repository, error) {
	opts, err := gitconfig.LoadConfig(cfg.e, gitconfig.LoadConfigOptions{
		WorkingDirectory: cfg.C.String(),
	})
	if err != nil {
		return nil, err
	}
	return git.OpenRepositoryWithOptions(opts, git.Options{})
}
