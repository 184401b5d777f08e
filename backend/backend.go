// Package backend contains the methods needed to store and retrieve
// objects and references from a .git directory
package backend

import (
	"sync"

	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/config"
	"github.com/goabstract/git-index/internal/cache"
	"github.com/goabstract/git-index/internal/syncutil"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// objectCacheSize is the number of decompressed objects kept in
// memory
const objectCacheSize = 1000

// Backend is a Backend implementation that uses the filesystem to
// store data
type Backend struct {
	config *config.Config
	fs     afero.Fs

	// cache holds decompressed objects, keyed by oid
	cache *cache.LRU
	// objectMu protects concurrent access to a same object
	objectMu *syncutil.NamedMutex
	// looseObjects keeps track of the oids available on disk so we
	// don't need to stat a file for every lookup
	looseObjects sync.Map
	// refs holds the references, keyed by their UNIX path
	refs sync.Map
}

// New returns a new Backend for the repo targeted by the config
func New(cfg *config.Config) (*Backend, error) {
	c, err := cache.NewLRU(objectCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create the object cache")
	}

	b := &Backend{
		config:   cfg,
		fs:       cfg.FS,
		cache:    c,
		objectMu: syncutil.NewNamedMutex(101),
	}

	if err := b.loadLooseObjects(); err != nil {
		return nil, err
	}
	if err := b.loadRefs(); err != nil {
		return nil, err
	}
	return b, nil
}

// Path returns the absolute path of the repo
func (b *Backend) Path() string {
	return ginternals.DotGitPath(b.config)
}

// Close frees the resources used by the backend
func (b *Backend) Close() error {
	b.cache.Clear()
	return nil
}
