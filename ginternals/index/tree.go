package index

import (
	"path"
	"strings"

	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/object"
	"golang.org/x/xerrors"
)

// newEntryFromTree builds an entry from a tree entry.
// The timestamps are set to -1 to signal that the entry was never
// compared against the working tree.
// The size is fetched from the object database, and left at -1 if
// the blob cannot be loaded (the next content check will recover it)
func (idx *Index) newEntryFromTree(te object.TreeEntry, fullPath string, stage int) *Entry {
	size := int32(-1)
	if o, err := idx.odb.Object(te.ID); err == nil {
		size = int32(o.Size())
	}

	k := newKey(fullPath)
	return &Entry{
		CTimeNs: -1,
		MTimeNs: -1,
		Dev:     -1,
		Ino:     -1,
		UID:     -1,
		GID:     -1,
		Mode:    te.Mode,
		Size:    size,
		ID:      te.ID,
		flags:   newEntryFlags(stage, k),
		name:    []byte(k),
	}
}

// ReadTree replaces the content of the index with the blobs of the
// given tree, recursively.
// Every resulting entry is at stage 0 with timestamps set to -1
func (idx *Index) ReadTree(treeID ginternals.Oid) error {
	var entries []*Entry
	if err := idx.readTreeRecursive(&entries, treeID, ""); err != nil {
		return err
	}

	idx.entries = nil
	for _, e := range entries {
		idx.insertEntry(e)
	}
	idx.contentChanged = true
	return nil
}

func (idx *Index) readTreeRecursive(entries *[]*Entry, treeID ginternals.Oid, prefix string) error {
	o, err := idx.odb.Object(treeID)
	if err != nil {
		return xerrors.Errorf("could not get tree %s: %w", treeID.String(), err)
	}
	tree, err := o.AsTree()
	if err != nil {
		return err
	}

	for _, te := range tree.Entries() {
		fullPath := path.Join(prefix, te.Path)
		if te.Mode == object.ModeDirectory {
			if err := idx.readTreeRecursive(entries, te.ID, fullPath); err != nil {
				return err
			}
			continue
		}
		*entries = append(*entries, idx.newEntryFromTree(te, fullPath, StageMerged))
	}
	return nil
}

// treeBuilder accumulates the entries of one directory while
// WriteTree walks the index
type treeBuilder struct {
	name    string
	entries []object.TreeEntry
}

// WriteTree persists the index as a hierarchy of tree objects in the
// object database and returns the id of the root tree.
//
// Because the entries are sorted by path bytes, a single linear scan
// is enough: directories open and close like brackets as the shared
// prefix of consecutive paths changes. A stack holds the trees that
// are currently open, the root at the bottom
func (idx *Index) WriteTree() (ginternals.Oid, error) {
	stack := []*treeBuilder{{}}
	var prevDirs []string

	// pop writes the finished top tree to the odb and records it as a
	// child of its parent
	pop := func() error {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tree := object.NewTree(top.entries)
		oid, err := idx.odb.WriteObject(tree.ToObject())
		if err != nil {
			return xerrors.Errorf("could not write tree %s: %w", top.name, err)
		}
		parent := stack[len(stack)-1]
		parent.entries = append(parent.entries, object.TreeEntry{
			Path: top.name,
			ID:   oid,
			Mode: object.ModeDirectory,
		})
		return nil
	}

	for _, e := range idx.entries {
		if e.Stage() != StageMerged {
			continue
		}

		components := strings.Split(e.Name(), "/")
		dirs := components[:len(components)-1]
		fileName := components[len(components)-1]

		// close the trees that are not part of this entry's path
		common := commonPrefixLen(prevDirs, dirs)
		for len(stack)-1 > common {
			if err := pop(); err != nil {
				return ginternals.NullOid, err
			}
		}
		// open the trees leading to this entry
		for len(stack)-1 < len(dirs) {
			stack = append(stack, &treeBuilder{name: dirs[len(stack)-1]})
		}

		top := stack[len(stack)-1]
		top.entries = append(top.entries, object.TreeEntry{
			Path: fileName,
			ID:   e.ID,
			Mode: e.Mode,
		})
		prevDirs = dirs
	}

	// close everything left open
	for len(stack) > 1 {
		if err := pop(); err != nil {
			return ginternals.NullOid, err
		}
	}

	root := object.NewTree(stack[0].entries)
	oid, err := idx.odb.WriteObject(root.ToObject())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write the root tree: %w", err)
	}
	return oid, nil
}

// commonPrefixLen returns the number of leading components a and b
// share
func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
