package main

import (
	"fmt"

	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var soft, mixed, hard bool

	cmd := &cobra.Command{
		Use:   "reset <commit>",
		Short: "Reposition the current branch at a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			mode := repo.ResetMixed
			switch {
			case soft && !mixed && !hard:
				mode = repo.ResetSoft
			case hard && !soft && !mixed:
				mode = repo.ResetHard
			case mixed && !soft && !hard, !soft && !mixed && !hard:
				mode = repo.ResetMixed
			default:
				return fmt.Errorf("at most one of --soft, --mixed, --hard may be given")
			}

			if err := r.Reset(args[0], mode); err != nil {
				return err
			}

			head, _ := r.ResolveRef("HEAD")
			fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", shortHash(head))
			return nil
		},
	}

	cmd.Flags().BoolVar(&soft, "soft", false, "move the pointer only")
	cmd.Flags().BoolVar(&mixed, "mixed", false, "move the pointer and clear staging (default)")
	cmd.Flags().BoolVar(&hard, "hard", false, "move the pointer, clear staging, and sync the working tree")
	return cmd
}
