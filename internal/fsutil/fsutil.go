// Package fsutil contains helpers to work with the executable bit of
// files on filesystems that support it
package fsutil

import (
	"os"
	"runtime"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// executableBits contains the user/group/other executable bits
const executableBits = os.FileMode(0o111)

// SupportsExecute returns whether the current filesystem supports
// the executable bit
func SupportsExecute() bool {
	return runtime.GOOS != "windows"
}

// CanExecute returns whether the file at the given path has at least
// one executable bit set
func CanExecute(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return false, xerrors.Errorf("could not stat %s: %w", path, err)
	}
	return info.Mode()&executableBits != 0, nil
}

// SetExecute sets or clears the executable bits of the file at the
// given path, mirroring the read bits
func SetExecute(fs afero.Fs, path string, executable bool) error {
	info, err := fs.Stat(path)
	if err != nil {
		return xerrors.Errorf("could not stat %s: %w", path, err)
	}

	mode := info.Mode() &^ executableBits
	if executable {
		// every reader gets to execute, like git does with 0755
		mode |= (info.Mode() & 0o444) >> 2
	}
	if err := fs.Chmod(path, mode); err != nil {
		return xerrors.Errorf("could not chmod %s: %w", path, err)
	}
	return nil
}
