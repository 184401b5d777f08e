package backend

import (
	"compress/zlib"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/object"
	"github.com/goabstract/git-index/internal/errutil"
	"github.com/goabstract/git-index/internal/readutil"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// loadLooseObjects browses the objects directory and keeps track of
// the oids it contains
func (b *Backend) loadLooseObjects() error {
	objectsPath := ginternals.ObjectsPath(b.config)
	err := afero.Walk(b.fs, objectsPath, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			//nolint:nilerr // a missing objects directory only means
			// the repo has no objects yet
			return nil
		}
		if info.IsDir() {
			return nil
		}
		// loose objects live in .git/objects/xx/ where xx is the
		// first 2 chars of their sha. Anything else (info files,
		// packfiles) is not a loose object
		dir := filepath.Base(filepath.Dir(p))
		if len(dir) != 2 {
			return nil
		}
		oid, oErr := ginternals.NewOidFromStr(dir + info.Name())
		if oErr != nil {
			return nil
		}
		b.looseObjects.Store(oid, struct{}{})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "could not browse the objects directory")
	}
	return nil
}

// Object returns the object that has given oid
// ginternals.ErrObjectNotFound is returned if the object doesn't
// exist.
// This method can be called concurrently
func (b *Backend) Object(oid ginternals.Oid) (*object.Object, error) {
	key := oid.Bytes()
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)

	return b.objectUnsafe(oid)
}

func (b *Backend) objectUnsafe(oid ginternals.Oid) (*object.Object, error) {
	if cachedO, found := b.cache.Get(oid); found {
		if o, valid := cachedO.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ginternals.ErrObjectNotFound
		}
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObject returns the object matching the given OID
// The format of an object is an ascii encoded type, an ascii encoded
// space, then an ascii encoded length of the object, then a null
// character, then the body of the object
func (b *Backend) looseObject(oid ginternals.Oid) (o *object.Object, err error) {
	if _, exists := b.looseObjects.Load(oid); !exists {
		return nil, os.ErrNotExist
	}

	strOid := oid.String()
	p := ginternals.LooseObjectPath(b.config, strOid)
	f, err := b.fs.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "could not get object %s at path %s", strOid, p)
	}
	defer errutil.Close(f, &err)

	// Objects are zlib encoded
	zlibReader, err := zlib.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decompress parts of object %s at path %s", strOid, p)
	}
	defer errutil.Close(zlibReader, &err)

	// We directly read the entire file since most of it is the content we
	// need, this allows us to be able to easily store the object's content
	buff, err := io.ReadAll(zlibReader)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read object %s at path %s", strOid, p)
	}

	// we keep track of where we're at in the buffer
	pointerPos := 0

	// the type of the object starts at offset 0 and ends a the first
	// space character that we'll need to trim
	typ := readutil.ReadTo(buff, ' ')
	if typ == nil {
		return nil, errors.Wrapf(object.ErrObjectInvalid, "could not find object type for %s at path %s", strOid, p)
	}

	oType, err := object.NewTypeFromString(string(typ))
	if err != nil {
		return nil, errors.Wrapf(object.ErrObjectInvalid, "unsupported type %s for object %s at path %s", string(typ), strOid, p)
	}
	pointerPos += len(typ)
	pointerPos++ // one more for the space

	// The size of the object starts after the space and ends at a NULL char
	// That we'll need to trim.
	size := readutil.ReadTo(buff[pointerPos:], 0)
	if size == nil {
		return nil, errors.Wrapf(object.ErrObjectInvalid, "could not find object size for %s at path %s", strOid, p)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid size %s for object %s at path %s", size, strOid, p)
	}
	pointerPos += len(size)
	pointerPos++                  // one more for the NULL char
	oContent := buff[pointerPos:] // sugar

	if len(oContent) != oSize {
		return nil, errors.Wrapf(object.ErrObjectInvalid, "object marked as size %d, but has %d at path %s", oSize, len(oContent), p)
	}

	return object.New(oType, oContent), nil
}

// HasObject returns whether an object exists in the odb
// This method can be called concurrently
func (b *Backend) HasObject(oid ginternals.Oid) bool {
	_, exists := b.looseObjects.Load(oid)
	return exists
}

// WriteObject adds an object to the odb
// This method can be called concurrently
func (b *Backend) WriteObject(o *object.Object) (ginternals.Oid, error) {
	data, err := o.Compress()
	if err != nil {
		return ginternals.NullOid, errors.Wrap(err, "could not compress object")
	}

	oid := o.ID()
	b.objectMu.Lock(oid.Bytes())
	defer b.objectMu.Unlock(oid.Bytes())

	// a same object always compresses to the same file, no need to
	// write it twice
	if _, exists := b.looseObjects.Load(oid); exists {
		return oid, nil
	}

	// Persist the data on disk
	sha := oid.String()
	p := ginternals.LooseObjectPath(b.config, sha)

	// We need to make sure the dest dir exists
	dest := filepath.Dir(p)
	if err = b.fs.MkdirAll(dest, 0o755); err != nil {
		return ginternals.NullOid, errors.Wrapf(err, "could not create the destination directory %s", dest)
	}

	// We use 444 because git objects are read-only
	if err = afero.WriteFile(b.fs, p, data, 0o444); err != nil {
		return ginternals.NullOid, errors.Wrapf(err, "could not persist object %s at path %s", sha, p)
	}

	b.looseObjects.Store(oid, struct{}{})
	b.cache.Add(oid, o)
	return oid, nil
}
