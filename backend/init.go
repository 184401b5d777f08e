package backend

import (
	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/internal/gitpath"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Init initializes a repository: creates the .git directory
// skeleton, the default config file, and points HEAD to the default
// branch.
// This method cannot be called concurrently with other methods
func (b *Backend) Init(branchName string) error {
	// Create the directories
	dirs := []string{
		b.Path(),
		ginternals.ObjectsPath(b.config),
		ginternals.ObjectsInfoPath(b.config),
		ginternals.ObjectsPacksPath(b.config),
		ginternals.LocalBranchesPath(b.config),
		ginternals.TagsPath(b.config),
	}
	for _, d := range dirs {
		if err := b.fs.MkdirAll(d, 0o750); err != nil {
			return errors.Wrapf(err, "could not create directory %s", d)
		}
	}

	// Create the files with the default content
	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    ginternals.DescriptionFilePath(b.config),
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
		{
			path:    ginternals.ConfigPath(b.config),
			content: []byte("[core]\n\trepositoryformatversion = 0\n\tfilemode = true\n\tbare = false\n"),
		},
	}
	for _, f := range files {
		if err := afero.WriteFile(b.fs, f.path, f.content, 0o644); err != nil {
			return errors.Wrapf(err, "could not create file %s", f.path)
		}
	}

	ref := ginternals.NewSymbolicReference(ginternals.Head, gitpath.LocalBranch(branchName))
	if err := b.WriteReferenceSafe(ref); err != nil {
		if errors.Is(err, ginternals.ErrRefExists) {
			return err
		}
		return errors.Wrap(err, "could not write HEAD")
	}
	return nil
}
