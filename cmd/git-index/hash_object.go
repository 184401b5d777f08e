package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goabstract/git-index/ginternals/object"
	"github.com/goabstract/git-index/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newHashObjectCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "Compute object ID and optionally creates a blob from a file",
		Args:  cobra.ExactArgs(1),
	}

	write := cmd.Flags().BoolP("write", "w", false, "Actually write the object into the object database.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *config, filePath string, write bool) (err error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	o := object.New(object.TypeBlob, content)
	if write {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		if _, err = r.NewBlob(content); err != nil {
			return xerrors.Errorf("could not store the blob: %w", err)
		}
	}

	fmt.Fprintln(out, o.ID().String())
	return nil
}
