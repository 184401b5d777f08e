package pathutil

import (
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"
)

// ErrOutsideWorkTree is an error returned when a path doesn't belong
// to the working tree
var ErrOutsideWorkTree = errors.New("file is outside the working tree")

// WorkTreeRelPath returns the path of the given file relative to the
// root of the working tree, in UNIX format.
// ErrOutsideWorkTree is returned if the file doesn't live under the
// working tree.
func WorkTreeRelPath(workTreePath, file string) (string, error) {
	if !filepath.IsAbs(file) {
		file = filepath.Join(workTreePath, file)
	}
	file = filepath.Clean(file)

	rel, err := filepath.Rel(filepath.Clean(workTreePath), file)
	if err != nil {
		return "", xerrors.Errorf("could not get the relative path of %s: %w", file, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", xerrors.Errorf("%s: %w", file, ErrOutsideWorkTree)
	}
	return filepath.ToSlash(rel), nil
}
