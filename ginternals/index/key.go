package index

import (
	"bytes"
	"path/filepath"
)

// key identifies an entry in the index: the raw bytes of the entry's
// path relative to the root of the working tree, in UNIX format.
//
// Keys are compared byte per byte, unsigned. When a key is a prefix
// of another, the shorter one sorts first. This matches the ordering
// the on-disk format requires
type key []byte

// newKey returns the key matching the provided path.
// The path may use the system's separator, it gets normalized
func newKey(path string) key {
	return key(filepath.ToSlash(path))
}

// Compare returns an integer comparing two keys.
// The result will be 0 if k == other, -1 if k < other,
// and +1 if k > other
func (k key) Compare(other key) int {
	return bytes.Compare(k, other)
}

// String returns the key as a UNIX path
func (k key) String() string {
	return string(k)
}
