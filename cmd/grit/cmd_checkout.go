package main

import (
	"fmt"

	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Switch the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if err := r.Checkout(args[0], force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if branch, _ := r.CurrentBranch(); branch != "" {
				fmt.Fprintf(out, "switched to branch '%s'\n", branch)
			} else {
				head, _ := r.ResolveRef("HEAD")
				fmt.Fprintf(out, "HEAD is now detached at %s\n", shortHash(head))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "discard unstaged local changes on switched paths")
	return cmd
}
