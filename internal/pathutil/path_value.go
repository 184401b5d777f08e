package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
)

// ErrIsNotDirectory is an error returned when a path
// is expected to points to a directory but isn't
var ErrIsNotDirectory = errors.New("path is not a directory")

// DirPathValue represents a Flag value to be parsed by spf13/pflag
// The value must be a path to an existing directory
type DirPathValue struct {
	defaultValue string
	userValue    string
	valueSet     bool
}

// NewDirPathFlagWithDefault return a new Flag Value that should hold
// a valid path to a directory
func NewDirPathFlagWithDefault(defaultPath string) pflag.Value {
	return &DirPathValue{
		defaultValue: defaultPath,
	}
}

// String returns the flag's value
func (v *DirPathValue) String() string {
	if !v.valueSet {
		return v.defaultValue
	}
	return v.userValue
}

// Set validates and sets the flag's value
func (v *DirPathValue) Set(value string) error {
	p, err := filepath.Abs(value)
	if err != nil {
		return xerrors.Errorf("could not get the absolute path of %s: %w", value, err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return xerrors.Errorf("could not check %s: %w", p, err)
	}
	if !info.IsDir() {
		return xerrors.Errorf("%s: %w", p, ErrIsNotDirectory)
	}

	v.userValue = p
	v.valueSet = true
	return nil
}

// Type returns the unique type of the Value
func (v *DirPathValue) Type() string {
	return "dirPath"
}
