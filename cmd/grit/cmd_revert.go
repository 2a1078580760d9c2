package main

import (
	"errors"
	"fmt"

	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newRevertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <commit>",
		Short: "Create a commit undoing the changes of an earlier commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h, err := r.Revert(args[0])
			if err != nil {
				var conflict *repo.ConflictError
				if errors.As(err, &conflict) {
					fmt.Fprintln(cmd.OutOrStdout(), "revert cannot apply cleanly:")
					for _, p := range conflict.Paths {
						fmt.Fprintf(cmd.OutOrStdout(), "  ! %s\n", p)
					}
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reverted %s in %s\n", args[0], shortHash(h))
			return nil
		},
	}
}
