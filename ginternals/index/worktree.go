package index

import (
	"path/filepath"

	"github.com/goabstract/git-index/ginternals/object"
	"github.com/goabstract/git-index/internal/fsutil"
	"github.com/goabstract/git-index/internal/pathutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// workTreeAbs returns the absolute path of an entry in the
// working tree
func (idx *Index) workTreeAbs(relPath string) string {
	return filepath.Join(idx.cfg.WorkTreePath, filepath.FromSlash(relPath))
}

// Add stages the given file at stage 0.
// The path may be absolute or relative to the root of the working
// tree, but must point inside of it: pathutil.ErrOutsideWorkTree is
// returned otherwise.
// If the file is already tracked its entry gets refreshed instead
func (idx *Index) Add(path string) (*Entry, error) {
	return idx.AddWithContent(path, nil)
}

// AddWithContent stages the given file using the provided bytes as
// its content instead of reading the file.
// A nil content means reading from the file
func (idx *Index) AddWithContent(path string, content []byte) (*Entry, error) {
	rel, err := pathutil.WorkTreeRelPath(idx.cfg.WorkTreePath, path)
	if err != nil {
		return nil, err
	}
	k := newKey(rel)

	if e, ok := idx.entry(k); ok {
		changed, err := idx.updateEntry(e, content)
		if err != nil {
			return nil, err
		}
		if changed {
			idx.contentChanged = true
		} else {
			idx.statDirty = true
		}
		return e, nil
	}

	e, err := idx.newEntryFromFile(k, StageMerged, content)
	if err != nil {
		return nil, err
	}
	idx.insertEntry(e)
	idx.contentChanged = true
	return e, nil
}

// AddStaged stages the given file at the provided merge stage.
// An index holding entries at a stage other than StageMerged
// represents an unresolved merge and cannot be persisted until the
// conflicts are cleared
func (idx *Index) AddStaged(path string, stage int) (*Entry, error) {
	if stage < StageMerged || stage > StageTheirs {
		return nil, xerrors.Errorf("invalid stage %d", stage)
	}
	rel, err := pathutil.WorkTreeRelPath(idx.cfg.WorkTreePath, path)
	if err != nil {
		return nil, err
	}

	e, err := idx.newEntryFromFile(newKey(rel), stage, nil)
	if err != nil {
		return nil, err
	}
	idx.insertEntry(e)
	idx.contentChanged = true
	return e, nil
}

// Remove removes the given file from the index and returns whether
// it was tracked.
// The working tree is left untouched
func (idx *Index) Remove(path string) (bool, error) {
	rel, err := pathutil.WorkTreeRelPath(idx.cfg.WorkTreePath, path)
	if err != nil {
		return false, err
	}
	removed := idx.removeEntry(newKey(rel))
	if removed {
		idx.contentChanged = true
	}
	return removed, nil
}

// newEntryFromFile builds a new entry from a working tree file.
// The content is stored in the object database right away
func (idx *Index) newEntryFromFile(k key, stage int, content []byte) (*Entry, error) {
	abs := idx.workTreeAbs(k.String())
	info, err := idx.wt.Stat(abs)
	if err != nil {
		return nil, xerrors.Errorf("could not stat %s: %w", abs, err)
	}

	mode := object.ModeFile
	if idx.honorFileMode() {
		executable, err := fsutil.CanExecute(idx.wt, abs)
		if err != nil {
			return nil, err
		}
		if executable {
			mode = object.ModeExecutable
		}
	}

	if content == nil {
		content, err = afero.ReadFile(idx.wt, abs)
		if err != nil {
			return nil, xerrors.Errorf("could not read %s: %w", abs, err)
		}
	}

	oid, err := idx.odb.WriteObject(object.New(object.TypeBlob, content))
	if err != nil {
		return nil, xerrors.Errorf("could not store the content of %s: %w", abs, err)
	}

	mtime := info.ModTime().UnixNano()
	return &Entry{
		CTimeNs: mtime,
		MTimeNs: mtime,
		Dev:     -1,
		Ino:     -1,
		UID:     -1,
		GID:     -1,
		Mode:    mode,
		Size:    int32(len(content)),
		ID:      oid,
		flags:   newEntryFlags(stage, k),
		name:    []byte(k),
	}, nil
}

// updateEntry refreshes an entry against the current state of its
// working tree file, re-hashing the content when the cached stat
// data doesn't match anymore.
// Returns whether the staged state changed: either the content got a
// new oid, or the tracked mode flipped. A pure stat refresh (the
// file got touched but its bytes are the same) reports false
func (idx *Index) updateEntry(e *Entry, content []byte) (bool, error) {
	abs := idx.workTreeAbs(e.Name())
	info, err := idx.wt.Stat(abs)
	if err != nil {
		return false, xerrors.Errorf("could not stat %s: %w", abs, err)
	}

	modified := false
	mtime := info.ModTime().UnixNano()
	if e.MTimeNs != mtime {
		modified = true
	}
	e.MTimeNs = mtime

	if e.Size != int32(info.Size()) {
		modified = true
	}

	modeChanged := false
	if idx.honorFileMode() {
		executable, err := fsutil.CanExecute(idx.wt, abs)
		if err != nil {
			return false, err
		}
		if executable != e.Mode.IsExecutable() {
			e.Mode = object.ModeFile
			if executable {
				e.Mode = object.ModeExecutable
			}
			modified = true
			modeChanged = true
		}
	}

	if !modified {
		return false, nil
	}

	if content == nil {
		content, err = afero.ReadFile(idx.wt, abs)
		if err != nil {
			return false, xerrors.Errorf("could not read %s: %w", abs, err)
		}
	}
	oid, err := idx.odb.WriteObject(object.New(object.TypeBlob, content))
	if err != nil {
		return false, xerrors.Errorf("could not store the content of %s: %w", abs, err)
	}
	previousID := e.ID
	e.Size = int32(len(content))
	e.ID = oid
	return modeChanged || oid != previousID, nil
}

// IsModified returns whether the working tree file of an entry
// diverged from its staged content.
//
// The check trusts the cached stat data as much as possible: an
// entry whose size and mtime match the file is considered unchanged,
// unless forceContentCheck is set, in which case a mismatching mtime
// triggers a full re-hash of the file
func (idx *Index) IsModified(e *Entry, forceContentCheck bool) bool {
	if e.AssumeValid() {
		return false
	}
	if e.UpdateNeeded() {
		return true
	}

	abs := idx.workTreeAbs(e.Name())
	info, err := idx.wt.Stat(abs)
	if err != nil {
		// no file means the entry diverged
		return true
	}

	switch e.Mode {
	case object.ModeFile, object.ModeExecutable:
		if idx.honorFileMode() {
			executable, err := fsutil.CanExecute(idx.wt, abs)
			if err != nil {
				return true
			}
			if executable != e.Mode.IsExecutable() {
				return true
			}
		}
	case object.ModeDirectory, object.ModeGitLink:
		// all we can check for a gitlink is that the directory is
		// still around
		return !info.IsDir()
	case object.ModeSymLink:
		fallthrough
	default:
		// no stat cache to compare for those, assume the worst
		return true
	}

	if e.Size != int32(info.Size()) {
		return true
	}

	fileMtime := info.ModTime().UnixNano()
	// some filesystems only store timestamps with a second
	// granularity. If our cached mtime is second-granular, compare
	// the file's timestamp the same way
	if e.MTimeNs%nsPerSec == 0 {
		fileMtime -= fileMtime % nsPerSec
	}
	if e.MTimeNs == fileMtime {
		return false
	}
	if !forceContentCheck {
		return true
	}

	content, err := afero.ReadFile(idx.wt, abs)
	if err != nil {
		return true
	}
	return object.New(object.TypeBlob, content).ID() != e.ID
}

// Checkout writes the staged content of every regular entry to the
// working tree
func (idx *Index) Checkout() error {
	for _, e := range idx.entries {
		if e.Stage() != StageMerged {
			continue
		}
		if err := idx.CheckoutEntry(e); err != nil {
			return err
		}
	}
	return nil
}

// CheckoutEntry writes the staged content of the entry to the
// working tree, creating parent directories as needed and
// overwriting any existing file.
// The entry's cached timestamps are refreshed to match the
// just-written file, so it won't report as modified
func (idx *Index) CheckoutEntry(e *Entry) error {
	o, err := idx.odb.Object(e.ID)
	if err != nil {
		return xerrors.Errorf("could not get the content of %s: %w", e.Name(), err)
	}

	abs := idx.workTreeAbs(e.Name())
	if err = idx.wt.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return xerrors.Errorf("could not create the parent directories of %s: %w", e.Name(), err)
	}
	if err = afero.WriteFile(idx.wt, abs, o.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not write %s: %w", e.Name(), err)
	}
	if idx.honorFileMode() {
		if err = fsutil.SetExecute(idx.wt, abs, e.Mode.IsExecutable()); err != nil {
			return err
		}
	}

	info, err := idx.wt.Stat(abs)
	if err != nil {
		return xerrors.Errorf("could not stat %s: %w", abs, err)
	}
	e.CTimeNs = info.ModTime().UnixNano()
	e.MTimeNs = e.CTimeNs
	idx.statDirty = true
	return nil
}
