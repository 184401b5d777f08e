package main

import (
	"github.com/goabstract/git-index/internal/errutil"
	"github.com/spf13/cobra"
)

func newCheckoutIndexCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout-index",
		Short: "Copy all files listed in the index to the working tree",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkoutIndexCmd(cfg)
	}

	return cmd
}

func checkoutIndexCmd(cfg *config) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	idx, err := r.Index()
	if err != nil {
		return err
	}

	if err = idx.Checkout(); err != nil {
		return err
	}
	return idx.Write()
}
