// Package git contains methods and objects to interact with a git
// repository: its object database, its references, and its staging
// index
package git

import (
	"errors"
	"path/filepath"

	"github.com/goabstract/git-index/backend"
	"github.com/goabstract/git-index/env"
	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/config"
	"github.com/goabstract/git-index/ginternals/index"
	"github.com/goabstract/git-index/ginternals/object"
	"github.com/goabstract/git-index/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// List of errors returned by the Repository struct
var (
	ErrRepositoryNotExist = errors.New("repository does not exist")
	ErrRepositoryExists   = errors.New("repository already exists")
)

// Repository represent a git repository
// A Git repository is the .git/ folder inside a project.
// This repository tracks all changes made to files in your project,
// building a history over time.
type Repository struct {
	cfg    *config.Config
	dotGit *backend.Backend
	wt     afero.Fs

	index *index.Index

	onIndexChange func()
}

// Options contains all the optional data used to initialize or open
// a repository
type Options struct {
	// IsBare represents whether the repository is bare or not.
	// A bare repository has no working tree
	IsBare bool
	// InitialBranch is the branch HEAD points to when initializing a
	// new repository.
	// Defaults to the config's init.defaultBranch, then to master
	InitialBranch string
	// OnIndexChange is called every time the on-disk index file
	// changes
	OnIndexChange func()
}

// InitRepository initialize a new git repository by creating the .git
// directory in the given path, which is where almost everything that
// Git stores and manipulates is located
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepository(repoPath string) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: repoPath,
		GitDirPath:       filepath.Join(repoPath, gitpath.DotGitPath),
		WorkTreePath:     repoPath,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not create the config: %w", err)
	}
	return InitRepositoryWithOptions(cfg, Options{})
}

// InitRepositoryWithOptions initialize a new git repository targeted
// by the given config
func InitRepositoryWithOptions(cfg *config.Config, opts Options) (*Repository, error) {
	r, err := newRepository(cfg, opts)
	if err != nil {
		return nil, err
	}

	branch := opts.InitialBranch
	if branch == "" {
		branch = ginternals.Master
		if name, ok := cfg.FromFile().DefaultBranch(); ok {
			branch = name
		}
	}

	if err := r.dotGit.Init(branch); err != nil {
		if errors.Is(err, ginternals.ErrRefExists) {
			return nil, ErrRepositoryExists
		}
		return nil, err
	}
	return r, nil
}

// OpenRepository loads an existing git repository from the given
// path, and returns a Repository instance
func OpenRepository(repoPath string) (*Repository, error) {
	cfg, err := config.LoadConfig(env.NewFromOs(), config.LoadConfigOptions{
		WorkingDirectory: repoPath,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not create the config: %w", err)
	}
	return OpenRepositoryWithOptions(cfg, Options{})
}

// OpenRepositoryWithOptions loads an existing git repository targeted
// by the given config, and returns a Repository instance
func OpenRepositoryWithOptions(cfg *config.Config, opts Options) (*Repository, error) {
	r, err := newRepository(cfg, opts)
	if err != nil {
		return nil, err
	}

	// since we can't only rely on the directory existing on disk to
	// validate that the repo exists, we check for HEAD (it should
	// always be there)
	if _, err := r.dotGit.Reference(ginternals.Head); err != nil {
		return nil, ErrRepositoryNotExist
	}
	return r, nil
}

func newRepository(cfg *config.Config, opts Options) (*Repository, error) {
	dotGit, err := backend.New(cfg)
	if err != nil {
		return nil, xerrors.Errorf("could not create the backend: %w", err)
	}

	onIndexChange := opts.OnIndexChange
	if onIndexChange == nil {
		onIndexChange = func() {}
	}

	r := &Repository{
		cfg:           cfg,
		dotGit:        dotGit,
		onIndexChange: onIndexChange,
	}
	if !opts.IsBare {
		r.wt = cfg.FS
	}
	return r, nil
}

// IsBare returns whether the repo is bare or not.
// A bare repo doesn't have a working tree
func (r *Repository) IsBare() bool {
	return r.wt == nil
}

// Config returns the config of the repository
func (r *Repository) Config() *config.Config {
	return r.cfg
}

// GetObject returns the object matching the given ID
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	return r.dotGit.Object(oid)
}

// GetReference returns the reference matching the given name
func (r *Repository) GetReference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}

// NewBlob creates, stores, and returns a new Blob object
func (r *Repository) NewBlob(data []byte) (*object.Blob, error) {
	o := object.New(object.TypeBlob, data)
	if _, err := r.dotGit.WriteObject(o); err != nil {
		return nil, xerrors.Errorf("could not store the blob: %w", err)
	}
	return o.AsBlob(), nil
}

// Index returns the staging index of the repository, reloading it
// from disk if the index file changed since the last call
func (r *Repository) Index() (*index.Index, error) {
	if r.index == nil {
		r.index = index.New(r.cfg, r.dotGit, index.Options{
			WorkTreeFS: r.wt,
			OnChange:   r.onIndexChange,
		})
		if err := r.index.Read(); err != nil {
			r.index = nil
			return nil, err
		}
		return r.index, nil
	}
	if _, err := r.index.RereadIfNecessary(); err != nil {
		return nil, err
	}
	return r.index, nil
}

// Close frees the resources used by the repository
func (r *Repository) Close() error {
	return r.dotGit.Close()
}
