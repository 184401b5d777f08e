// Package index contains methods and objects to work with the staging
// index of a repository.
// The index is the pivot between the working tree and the object
// database: it lists every tracked path alongside the oid of its
// staged content and a cache of its stat data.
//
// An index file contains 4 sections. A header, a list of entries,
// a list of extensions, and a footer.
// Header: 12 bytes
//         The first 4 bytes contain the magic ('D', 'I', 'R', 'C')
//         The next 4 bytes contains the version (0, 0, 0, 2)
//             Only version 2 is supported here
//         The last 4 bytes contains the number of entries in the file
// Entries: Variable size
//          Index entries are sorted in ascending order by name.
//          Data (see stat(2) for more info on some fields):
//              - 4 bytes: the ctime seconds.
//                  ctime: Last time the file's metadata changed
//              - 4 bytes: the ctime nanosecond fractions
//              - 4 bytes: the mtime seconds
//                  mtime: Last time the file's data changed
//              - 4 bytes: mtime nanosecond fractions
//              - 4 bytes: dev (device ID)
//              - 4 bytes: ino (inode's number or file's serial number)
//              - 4 bytes: mode of the entry
//              - 4 bytes: uid (user ID)
//              - 4 bytes: gid (group ID)
//              - 4 bytes: file size (truncated to 32 bits)
//              - 20 bytes: oid of the staged content
//              - 2 bytes: flags (high to low, left to right)
//                  - assume-valid flag (1 bit)
//                  - update-needed flag (1 bit)
//                  - stage (2 bits). Used during merge
//                  - name length (12 bits).
//                      - If 0xFFF, the length didn't fit in 12 bits
//              - Entry path name (variable size)
//              - 1 to 8 NULL bytes as padding, so every entry ends on
//                a multiple of 8 bytes
// Extensions: Variable size. Not written by this implementation, and
//         skipped when reading
// Footer: 20 bytes
//         Contains the SHA1 sum of everything above
// https://git-scm.com/docs/index-format
package index

import (
	"errors"
	"sort"
	"time"

	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/config"
	"github.com/goabstract/git-index/ginternals/object"
	"github.com/goabstract/git-index/internal/fsutil"
	"github.com/spf13/afero"
)

var (
	// ErrCorruptIndex is an error thrown when the on-disk index cannot
	// be parsed: bad signature, unsupported version, truncated record,
	// or digest mismatch
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrIndexBusy is an error thrown when the index lockfile is
	// already held by someone else
	ErrIndexBusy = errors.New("index file is in use")

	// ErrUnmergedEntries is an error thrown when trying to persist an
	// index that contains entries at a stage other than 0
	ErrUnmergedEntries = errors.New("unmerged entries, won't write corrupt index")
)

// ObjectStore represents the part of the object database the index
// interacts with
type ObjectStore interface {
	// Object returns the object that has given oid
	Object(ginternals.Oid) (*object.Object, error)
	// WriteObject adds an object to the odb
	WriteObject(*object.Object) (ginternals.Oid, error)
}

// Options represents the optional collaborators of an Index
type Options struct {
	// WorkTreeFS represents the filesystem implementation holding the
	// working tree.
	// Defaults to the config's filesystem
	WorkTreeFS afero.Fs
	// OnChange is called every time the on-disk index file changes
	// (after a successful Write, or a re-read)
	OnChange func()
}

// Index represents the staging index of a repository
// The zero value is not usable, use New()
//
// An Index is not safe for concurrent use
type Index struct {
	cfg *config.Config
	odb ObjectStore
	wt  afero.Fs

	onChange func()

	// entries is kept sorted by key at all time
	entries []*Entry

	// lastCacheTime contains the mtime the on-disk index file had
	// last time we read or wrote it
	lastCacheTime time.Time

	// contentChanged is set when the membership or the staged content
	// differs from the on-disk index
	contentChanged bool
	// statDirty is set when only the cached stat data got refreshed
	statDirty bool
}

// New creates a new empty Index for the given repo
func New(cfg *config.Config, odb ObjectStore, opts Options) *Index {
	wt := opts.WorkTreeFS
	if wt == nil {
		wt = cfg.FS
	}
	onChange := opts.OnChange
	if onChange == nil {
		onChange = func() {}
	}
	return &Index{
		cfg:      cfg,
		odb:      odb,
		wt:       wt,
		onChange: onChange,
	}
}

// Entries returns the entries of the index, sorted by key
func (idx *Index) Entries() []*Entry {
	out := make([]*Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Len returns the number of entries in the index
func (idx *Index) Len() int {
	return len(idx.entries)
}

// HasChanges returns whether the in-memory index differs from the
// on-disk one
func (idx *Index) HasChanges() bool {
	return idx.contentChanged || idx.statDirty
}

// Entry returns the entry matching the provided path.
// The path is expected to be relative to the root of the working
// tree, using either the system's format or the UNIX one
func (idx *Index) Entry(path string) (e *Entry, found bool) {
	return idx.entry(newKey(path))
}

func (idx *Index) entry(k key) (*Entry, bool) {
	i := idx.searchKey(k)
	if i < len(idx.entries) && idx.entries[i].key().Compare(k) == 0 {
		return idx.entries[i], true
	}
	return nil, false
}

// searchKey returns the position at which an entry with the given
// key is, or should be inserted
func (idx *Index) searchKey(k key) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].key().Compare(k) >= 0
	})
}

// insertEntry adds the entry in the index, keeping the entries
// sorted. An entry with the same key gets overwritten
func (idx *Index) insertEntry(e *Entry) {
	i := idx.searchKey(e.key())
	if i < len(idx.entries) && idx.entries[i].key().Compare(e.key()) == 0 {
		idx.entries[i] = e
		return
	}
	idx.entries = append(idx.entries, nil)
	copy(idx.entries[i+1:], idx.entries[i:])
	idx.entries[i] = e
}

// removeEntry removes the entry matching the key and returns whether
// it was present
func (idx *Index) removeEntry(k key) bool {
	i := idx.searchKey(k)
	if i >= len(idx.entries) || idx.entries[i].key().Compare(k) != 0 {
		return false
	}
	idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
	return true
}

// checkWriteOK makes sure the index is in a state that can be
// persisted. An index holding unmerged entries cannot be written
func (idx *Index) checkWriteOK() error {
	for _, e := range idx.entries {
		if e.Stage() != 0 {
			return ErrUnmergedEntries
		}
	}
	return nil
}

// honorFileMode returns whether the executable bit of the working
// tree files should be trusted
func (idx *Index) honorFileMode() bool {
	return fsutil.SupportsExecute() && idx.cfg.FromFile().FileMode()
}
