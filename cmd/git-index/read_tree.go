package main

import (
	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newReadTreeCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read-tree TREE",
		Short: "Read tree information into the index",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return readTreeCmd(cfg, args[0])
	}

	return cmd
}

func readTreeCmd(cfg *config, treeName string) (err error) {
	oid, err := ginternals.NewOidFromStr(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid tree name %s: %w", treeName, err)
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

	if err = idx.ReadTree(oid); err != nil {
		return err
	}
	return idx.Write()
}
