package main

import (
	"errors"

	"github.com/goabstract/git-index/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newUpdateIndexCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-index FILE...",
		Short: "Register file contents in the working tree to the index",
		Args:  cobra.MinimumNArgs(1),
	}

	add := cmd.Flags().Bool("add", false, "If a specified file isn't in the index already then it's added.")
	remove := cmd.Flags().Bool("force-remove", false, "Remove the files from the index, even if the working directory still has them.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return updateIndexCmd(cfg, args, *add, *remove)
	}

	return cmd
}

func updateIndexCmd(cfg *config, files []string, add, remove bool) (err error) {
	if add && remove {
		return errors.New("--add and --force-remove are mutually exclusive")
	}

	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	idx, err := r.Index()
	if err != nil {
		return err
	}

	for _, f := range files {
		switch {
		case remove:
			if _, err = idx.Remove(f); err != nil {
				return xerrors.Errorf("could not remove %s: %w", f, err)
			}
		default:
			if !add {
				// without --add, only already tracked files may be
				// refreshed
				if _, tracked := idx.Entry(f); !tracked {
					return xerrors.Errorf("%s: cannot add to the index - missing --add option", f)
				}
			}
			if _, err = idx.Add(f); err != nil {
				return xerrors.Errorf("could not add %s: %w", f, err)
			}
		}
	}

	return idx.Write()
}
