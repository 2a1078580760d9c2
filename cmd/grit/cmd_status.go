package main

import (
	"fmt"

	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			if branch != "" {
				fmt.Fprintf(out, "on %s\n", branch)
			} else {
				head, _ := r.ResolveRef("HEAD")
				fmt.Fprintf(out, "detached HEAD at %s\n", shortHash(head))
			}

			if merging, err := r.MergeInProgress(); err != nil {
				return err
			} else if merging {
				fmt.Fprintln(out, "merge in progress; resolve conflicts and commit, or run 'grit merge --abort'")
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}

			var staged, unstaged, untracked []string
			for _, e := range entries {
				switch e.Status {
				case repo.StatusStagedAdded:
					staged = append(staged, "  + "+e.Path)
				case repo.StatusStagedRemoved:
					staged = append(staged, "  - "+e.Path)
				case repo.StatusModifiedUnstaged:
					unstaged = append(unstaged, "  ~ "+e.Path)
				case repo.StatusDeletedUnstaged:
					unstaged = append(unstaged, "  - "+e.Path)
				case repo.StatusUntracked:
					untracked = append(untracked, "  ? "+e.Path)
				}
			}

			if len(staged) == 0 && len(unstaged) == 0 && len(untracked) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
				return nil
			}

			printSection := func(title string, lines []string) {
				if len(lines) == 0 {
					return
				}
				fmt.Fprintln(out, title)
				for _, l := range lines {
					fmt.Fprintln(out, l)
				}
			}
			printSection("staged changes:", staged)
			printSection("unstaged changes:", unstaged)
			printSection("untracked files:", untracked)
			return nil
		},
	}
}
