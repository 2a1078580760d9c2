package main

import (
	"errors"
	"fmt"

	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var abort bool

	cmd := &cobra.Command{
		Use:   "merge [branch|commit]",
		Short: "Merge another line of history into the current branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if abort {
				if err := r.MergeAbort(); err != nil {
					return err
				}
				fmt.Fprintln(out, "merge aborted")
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("merge target is required")
			}

			result, err := r.Merge(args[0])
			if err != nil {
				var conflict *repo.ConflictError
				if errors.As(err, &conflict) {
					fmt.Fprintln(out, "merge stopped on conflicts:")
					for _, p := range conflict.Paths {
						fmt.Fprintf(out, "  ! %s\n", p)
					}
					fmt.Fprintln(out, "resolve, stage the results, and commit; or run 'grit merge --abort'")
					return err
				}
				return err
			}

			if result.FastForward {
				fmt.Fprintf(out, "fast-forwarded to %s\n", shortHash(result.Commit))
			} else {
				fmt.Fprintf(out, "merged %s in %s\n", args[0], shortHash(result.Commit))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&abort, "abort", false, "abort an in-progress merge and restore HEAD state")
	return cmd
}
