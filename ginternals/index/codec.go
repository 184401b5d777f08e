package index

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/internal/errutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

const (
	// indexSignature is the magic at the start of an index file:
	// 'D', 'I', 'R', 'C' for "directory cache"
	indexSignature uint32 = 0x44495243
	// indexVersion is the only on-disk format version supported
	indexVersion uint32 = 2

	// headerSize is the size of the serialized header
	headerSize = 12
	// digestSize is the size of the SHA1 digest at the end of the file
	digestSize = sha1.Size

	nsPerSec = int64(1_000_000_000)
)

// header represents the fixed prefix of an index file
type header struct {
	entryCount uint32
}

// parseHeader reads the 12-byte header at the start of data
func parseHeader(data []byte) (header, error) {
	h := header{}
	if len(data) < headerSize {
		return h, xerrors.Errorf("file too small for a header: %w", ErrCorruptIndex)
	}
	if binary.BigEndian.Uint32(data[0:]) != indexSignature {
		return h, xerrors.Errorf("bad signature: %w", ErrCorruptIndex)
	}
	if binary.BigEndian.Uint32(data[4:]) != indexVersion {
		return h, xerrors.Errorf("unsupported version: %w", ErrCorruptIndex)
	}
	h.entryCount = binary.BigEndian.Uint32(data[8:])
	return h, nil
}

// appendTo serializes the header and appends it to buf
func (h header) appendTo(buf []byte) []byte {
	var out [headerSize]byte
	binary.BigEndian.PutUint32(out[0:], indexSignature)
	binary.BigEndian.PutUint32(out[4:], indexVersion)
	binary.BigEndian.PutUint32(out[8:], h.entryCount)
	return append(buf, out[:]...)
}

// Read loads the on-disk index in memory, replacing the current
// entries.
// A missing file resets the index to empty. A file that cannot be
// parsed, or whose trailing digest doesn't match its content, leaves
// the in-memory state untouched and returns an error wrapping
// ErrCorruptIndex
func (idx *Index) Read() error {
	indexPath := ginternals.IndexPath(idx.cfg)

	info, err := idx.cfg.FS.Stat(indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			idx.entries = nil
			idx.lastCacheTime = time.Time{}
			idx.contentChanged = false
			idx.statDirty = false
			return nil
		}
		return xerrors.Errorf("could not check the index file: %w", err)
	}

	data, err := afero.ReadFile(idx.cfg.FS, indexPath)
	if err != nil {
		return xerrors.Errorf("could not read the index file: %w", err)
	}

	entries, err := parseIndex(data)
	if err != nil {
		return err
	}

	// we only commit the parsed data to the live index once everything
	// checked out, so a corrupt file cannot leave us half loaded
	idx.entries = entries
	idx.lastCacheTime = info.ModTime()
	idx.contentChanged = false
	idx.statDirty = false
	return nil
}

// parseIndex parses a whole index file into a scratch entry list
func parseIndex(data []byte) ([]*Entry, error) {
	if len(data) < headerSize+digestSize {
		return nil, xerrors.Errorf("file too small: %w", ErrCorruptIndex)
	}

	// The last 20 bytes are the SHA1 sum of everything before them
	content := data[:len(data)-digestSize]
	digest := data[len(data)-digestSize:]
	sum := sha1.Sum(content)
	if !bytes.Equal(sum[:], digest) {
		return nil, xerrors.Errorf("digest mismatch: %w", ErrCorruptIndex)
	}

	h, err := parseHeader(content)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, h.entryCount)
	offset := headerSize
	for i := uint32(0); i < h.entryCount; i++ {
		e, size, err := parseEntry(content[offset:])
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i+1, err)
		}
		offset += size
		entries = append(entries, e)
	}

	// anything left between the last entry and the digest is
	// extension data, which we don't support and drop

	if !sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].key().Compare(entries[j].key()) < 0
	}) {
		return nil, xerrors.Errorf("entries are not sorted: %w", ErrCorruptIndex)
	}
	return entries, nil
}

// RereadIfNecessary reloads the index if the on-disk file changed
// since it was last read or written.
// Returns whether a reload happened
func (idx *Index) RereadIfNecessary() (bool, error) {
	info, err := idx.cfg.FS.Stat(ginternals.IndexPath(idx.cfg))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, xerrors.Errorf("could not check the index file: %w", err)
	}
	if info.ModTime().Equal(idx.lastCacheTime) {
		return false, nil
	}
	if err := idx.Read(); err != nil {
		return false, err
	}
	idx.onChange()
	return true, nil
}

// Write atomically persists the index.
//
// The update is protected by an advisory lockfile: holding
// "index.lock" in the .git directory means owning the right to
// replace the index file. If the lockfile already exists the call
// fails right away with ErrIndexBusy, it never blocks.
//
// The new content is assembled in "index.tmp" and renamed over the
// index file, so readers never observe a torn file. The lockfile and
// the temp file are removed on every exit path
func (idx *Index) Write() (err error) {
	if err = idx.checkWriteOK(); err != nil {
		return err
	}

	fs := idx.cfg.FS
	lockPath := ginternals.IndexLockPath(idx.cfg)
	tmpPath := ginternals.IndexTmpPath(idx.cfg)
	indexPath := ginternals.IndexPath(idx.cfg)

	lock, err := fs.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return xerrors.Errorf("%s: %w", lockPath, ErrIndexBusy)
		}
		return xerrors.Errorf("could not create the lockfile: %w", err)
	}
	// the lockfile's existence is the lock, its content is unused
	if err = lock.Close(); err != nil {
		return xerrors.Errorf("could not close the lockfile: %w", err)
	}
	defer func() {
		if rmErr := fs.Remove(lockPath); rmErr != nil && err == nil {
			err = xerrors.Errorf("could not remove the lockfile: %w", rmErr)
		}
		if rmErr := fs.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = xerrors.Errorf("could not remove the temp file: %w", rmErr)
		}
	}()

	data := header{entryCount: uint32(len(idx.entries))}.appendTo(nil)
	for _, e := range idx.entries {
		data = e.appendTo(data)
	}
	// the file ends with the SHA1 sum of everything before it
	sum := sha1.Sum(data)
	data = append(data, sum[:]...)

	tmp, err := fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return xerrors.Errorf("could not create the temp file: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		errutil.Close(tmp, &err)
		return xerrors.Errorf("could not write the temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		errutil.Close(tmp, &err)
		return xerrors.Errorf("could not sync the temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return xerrors.Errorf("could not close the temp file: %w", err)
	}

	// rename is not atomic over an existing file everywhere, so the
	// index gets deleted first. The lockfile keeps concurrent writers
	// out during the short window where the index is absent
	if _, sErr := fs.Stat(indexPath); sErr == nil {
		if err = fs.Remove(indexPath); err != nil {
			return xerrors.Errorf("could not remove the previous index: %w", err)
		}
	}
	if err = fs.Rename(tmpPath, indexPath); err != nil {
		return xerrors.Errorf("could not move the new index in place: %w", err)
	}

	info, err := fs.Stat(indexPath)
	if err != nil {
		return xerrors.Errorf("could not check the new index: %w", err)
	}
	idx.lastCacheTime = info.ModTime()
	idx.contentChanged = false
	idx.statDirty = false
	idx.onChange()
	return nil
}
