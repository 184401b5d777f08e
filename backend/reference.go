package backend

import (
	"io/fs"
	"path/filepath"

	"github.com/goabstract/git-index/ginternals"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Reference returns a stored reference from its name
// ginternals.ErrRefNotFound is returned if the reference doesn't
// exists
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	finder := func(name string) ([]byte, error) {
		data, ok := b.refs.Load(name)
		if !ok {
			return nil, errors.Wrapf(ginternals.ErrRefNotFound, `ref "%s"`, name)
		}
		return data.([]byte), nil
	}
	return ginternals.ResolveReference(name, finder)
}

// loadRefs loads the on-disk references in memory
func (b *Backend) loadRefs() error {
	// we browse all the references on disk
	refsPath := ginternals.RefsPath(b.config)
	err := afero.Walk(b.fs, refsPath, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			//nolint:nilerr // a missing refs directory only means the
			// repo has no references yet
			return nil
		}
		if info.IsDir() {
			return nil
		}
		data, e := afero.ReadFile(b.fs, p)
		if e != nil {
			return errors.Wrapf(e, "could not read reference at %s", p)
		}
		relpath, e := filepath.Rel(b.Path(), p)
		if e != nil {
			return e
		}
		// the name of the ref is its UNIX path
		b.refs.Store(filepath.ToSlash(relpath), data)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "could not browse the refs directory")
	}

	// Now we look for HEAD
	headPath := filepath.Join(b.Path(), ginternals.Head)
	data, err := afero.ReadFile(b.fs, headPath)
	if err == nil {
		b.refs.Store(ginternals.Head, data)
	}
	return nil
}

// WriteReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	var data []byte
	switch ref.Type() {
	case ginternals.SymbolicReference:
		data = []byte("ref: " + ref.SymbolicTarget() + "\n")
	case ginternals.OidReference:
		data = []byte(ref.Target().String() + "\n")
	default:
		return errors.Wrapf(ginternals.ErrRefInvalid, "unsupported reference type %d", ref.Type())
	}

	p := filepath.Join(b.Path(), filepath.FromSlash(ref.Name()))
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "could not create the directories for %s", ref.Name())
	}
	if err := afero.WriteFile(b.fs, p, data, 0o644); err != nil {
		return errors.Wrapf(err, "could not persist reference %s", ref.Name())
	}
	b.refs.Store(ref.Name(), data)
	return nil
}

// WriteReferenceSafe writes the given reference on disk.
// ginternals.ErrRefExists is returned if the reference already exists
func (b *Backend) WriteReferenceSafe(ref *ginternals.Reference) error {
	if _, ok := b.refs.Load(ref.Name()); ok {
		return errors.Wrapf(ginternals.ErrRefExists, `ref "%s"`, ref.Name())
	}
	return b.WriteReference(ref)
}
