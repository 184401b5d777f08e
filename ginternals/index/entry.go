package index

import (
	"bytes"
	"encoding/binary"

	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/object"
	"golang.org/x/xerrors"
)

// Entry flags, stored in the high bits of a big-endian 16-bit word
const (
	// flagAssumeValid marks an entry that should be trusted to match
	// the working tree, no stat or content check needed
	flagAssumeValid uint16 = 0x8000
	// flagUpdateNeeded forces a modification check on the entry
	flagUpdateNeeded uint16 = 0x4000
	// flagStageMask covers the 2 stage bits used during merges
	flagStageMask uint16 = 0x3000
	// flagNameMask covers the 12 bits holding the name length
	flagNameMask uint16 = 0x0FFF

	stageShift = 12

	// entryFixedSize is the size of the fixed part of a serialized
	// entry, up to and including the flags
	entryFixedSize = 62
)

// Stages of an entry. Any entry that isn't part of an unresolved
// merge is at StageMerged
const (
	// StageMerged is the stage of a regular entry
	StageMerged = 0
	// StageBase is the stage of the common ancestor's version during
	// a merge
	StageBase = 1
	// StageOurs is the stage of the receiving branch's version during
	// a merge
	StageOurs = 2
	// StageTheirs is the stage of the merged branch's version during
	// a merge
	StageTheirs = 3
)

// Entry represents a single tracked path in the index.
//
// The stat fields (Dev, Ino, UID, GID) are opaque caches of what the
// filesystem reported, and may be -1 when unknown. They are persisted
// verbatim
type Entry struct {
	// CTimeNs is the last time the file's metadata changed,
	// in nanoseconds since EPOCH. -1 when the entry was never
	// compared against the working tree
	CTimeNs int64
	// MTimeNs is the last time the file's data changed,
	// in nanoseconds since EPOCH. -1 when the entry was never
	// compared against the working tree
	MTimeNs int64

	// Dev is the ID of the device containing the file
	Dev int32
	// Ino is the file's inode number
	Ino int32
	// UID is the user ID of the file's owner
	UID int32
	// GID is the group ID of the file's owner
	GID int32

	// Mode contains the git mode bits of the entry
	Mode object.TreeObjectMode

	// Size is the size of the staged content in bytes, truncated
	// to 32 bits
	Size int32

	// ID is the oid of the staged content in the object database
	ID ginternals.Oid

	flags uint16
	name  []byte
}

// newEntryFlags returns the flags word for an entry with the given
// stage and name
func newEntryFlags(stage int, name key) uint16 {
	l := len(name)
	if l > int(flagNameMask) {
		l = int(flagNameMask)
	}
	return uint16(stage)<<stageShift | uint16(l)
}

// Name returns the path of the entry, relative to the root of the
// working tree, in UNIX format
func (e *Entry) Name() string {
	return string(e.name)
}

// key returns the key the entry is stored under
func (e *Entry) key() key {
	return key(e.name)
}

// Stage returns the merge stage of the entry. 0 for a regular entry
func (e *Entry) Stage() int {
	return int((e.flags & flagStageMask) >> stageShift)
}

// AssumeValid returns whether the entry should be trusted to match
// the working tree without any check
func (e *Entry) AssumeValid() bool {
	return e.flags&flagAssumeValid != 0
}

// SetAssumeValid sets or clears the assume-valid flag
func (e *Entry) SetAssumeValid(v bool) {
	e.flags &^= flagAssumeValid
	if v {
		e.flags |= flagAssumeValid
	}
}

// UpdateNeeded returns whether the entry is flagged for a forced
// modification check
func (e *Entry) UpdateNeeded() bool {
	return e.flags&flagUpdateNeeded != 0
}

// SetUpdateNeeded sets or clears the update-needed flag
func (e *Entry) SetUpdateNeeded(v bool) {
	e.flags &^= flagUpdateNeeded
	if v {
		e.flags |= flagUpdateNeeded
	}
}

// setStage changes the merge stage of the entry
func (e *Entry) setStage(stage int) {
	e.flags = e.flags&^flagStageMask | uint16(stage)<<stageShift
}

// storedSize returns the number of bytes the serialized entry uses
// on disk, padding included.
// The +8 guarantees at least 1 byte of padding, which doubles as a
// NUL terminator for the name
func (e *Entry) storedSize() int {
	return (entryFixedSize + len(e.name) + 8) &^ 7
}

// appendTo serializes the entry and appends it to buf.
// All the integers are stored in big-endian. The timestamps are
// split into seconds and nanoseconds, both signed 32 bits
func (e *Entry) appendTo(buf []byte) []byte {
	var fixed [entryFixedSize]byte

	binary.BigEndian.PutUint32(fixed[0:], uint32(int32(e.CTimeNs/int64(nsPerSec))))
	binary.BigEndian.PutUint32(fixed[4:], uint32(int32(e.CTimeNs%int64(nsPerSec))))
	binary.BigEndian.PutUint32(fixed[8:], uint32(int32(e.MTimeNs/int64(nsPerSec))))
	binary.BigEndian.PutUint32(fixed[12:], uint32(int32(e.MTimeNs%int64(nsPerSec))))
	binary.BigEndian.PutUint32(fixed[16:], uint32(e.Dev))
	binary.BigEndian.PutUint32(fixed[20:], uint32(e.Ino))
	binary.BigEndian.PutUint32(fixed[24:], uint32(e.Mode))
	binary.BigEndian.PutUint32(fixed[28:], uint32(e.UID))
	binary.BigEndian.PutUint32(fixed[32:], uint32(e.GID))
	binary.BigEndian.PutUint32(fixed[36:], uint32(e.Size))
	copy(fixed[40:60], e.ID.Bytes())
	binary.BigEndian.PutUint16(fixed[60:], e.flags)

	total := e.storedSize()
	padding := total - entryFixedSize - len(e.name)

	buf = append(buf, fixed[:]...)
	buf = append(buf, e.name...)
	buf = append(buf, make([]byte, padding)...)
	return buf
}

// parseEntry deserializes one entry from the start of data and
// returns it alongside the number of bytes it used, padding included
func parseEntry(data []byte) (*Entry, int, error) {
	if len(data) < entryFixedSize {
		return nil, 0, xerrors.Errorf("truncated entry: %w", ErrCorruptIndex)
	}

	e := &Entry{}
	ctimeSec := int32(binary.BigEndian.Uint32(data[0:]))
	ctimeNano := int32(binary.BigEndian.Uint32(data[4:]))
	e.CTimeNs = int64(ctimeSec)*int64(nsPerSec) + int64(ctimeNano)
	mtimeSec := int32(binary.BigEndian.Uint32(data[8:]))
	mtimeNano := int32(binary.BigEndian.Uint32(data[12:]))
	e.MTimeNs = int64(mtimeSec)*int64(nsPerSec) + int64(mtimeNano)
	e.Dev = int32(binary.BigEndian.Uint32(data[16:]))
	e.Ino = int32(binary.BigEndian.Uint32(data[20:]))
	e.Mode = object.TreeObjectMode(binary.BigEndian.Uint32(data[24:]))
	e.UID = int32(binary.BigEndian.Uint32(data[28:]))
	e.GID = int32(binary.BigEndian.Uint32(data[32:]))
	e.Size = int32(binary.BigEndian.Uint32(data[36:]))

	var err error
	e.ID, err = ginternals.NewOidFromHex(data[40:60])
	if err != nil {
		// should never fail since any 20 bytes make a valid oid
		return nil, 0, xerrors.Errorf("invalid entry oid: %w", ErrCorruptIndex)
	}
	e.flags = binary.BigEndian.Uint16(data[60:])

	nameLen := int(e.flags & flagNameMask)
	if nameLen == int(flagNameMask) {
		// the name didn't fit in 12 bits, we need to measure it.
		// The padding guarantees at least one NUL after the name
		i := bytes.IndexByte(data[entryFixedSize:], 0)
		if i == -1 {
			return nil, 0, xerrors.Errorf("unterminated entry name: %w", ErrCorruptIndex)
		}
		nameLen = i
	}
	if entryFixedSize+nameLen > len(data) {
		return nil, 0, xerrors.Errorf("entry name overflows the file: %w", ErrCorruptIndex)
	}
	e.name = make([]byte, nameLen)
	copy(e.name, data[entryFixedSize:entryFixedSize+nameLen])

	total := e.storedSize()
	if total > len(data) {
		return nil, 0, xerrors.Errorf("truncated entry padding: %w", ErrCorruptIndex)
	}
	return e, total, nil
}
