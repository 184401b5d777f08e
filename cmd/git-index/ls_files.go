package main

import (
	"fmt"
	"io"

	"github.com/goabstract/git-index/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsFilesCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "Show information about files in the index",
	}

	stage := cmd.Flags().BoolP("stage", "s", false, "Show staged contents' mode bits, object name and stage number.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsFilesCmd(cmd.OutOrStdout(), cfg, *stage)
	}

	return cmd
}

func lsFilesCmd(out io.Writer, cfg *config, stage bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	idx, err := r.Index()
	if err != nil {
		return err
	}

	for _, e := range idx.Entries() {
		if stage {
			fmt.Fprintf(out, "%06o %s %d\t%s\n", e.Mode, e.ID.String(), e.Stage(), e.Name())
			continue
		}
		fmt.Fprintln(out, e.Name())
	}
	return nil
}
