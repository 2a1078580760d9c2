package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jmallove/grit/pkg/object"
	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "log [start]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			start := "HEAD"
			if len(args) == 1 {
				start = args[0]
			}
			startHash, err := r.ResolveRef(start)
			if err != nil {
				return fmt.Errorf("cannot resolve %q: %w", start, err)
			}

			mode := repo.FirstParent
			if all {
				mode = repo.AllAncestors
			}
			walker, err := r.Log(startHash, mode)
			if err != nil {
				return err
			}

			branchName, _ := r.CurrentBranch()
			headHash, _ := r.ResolveRef("HEAD")

			out := cmd.OutOrStdout()
			for shown := 0; limit <= 0 || shown < limit; shown++ {
				entry, err := walker.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}

				decoration := buildDecoration(entry.Hash, headHash, branchName)
				if oneline {
					if decoration != "" {
						fmt.Fprintf(out, "%s %s %s\n", shortHash(entry.Hash), decoration, entry.Commit.Message)
					} else {
						fmt.Fprintf(out, "%s %s\n", shortHash(entry.Hash), entry.Commit.Message)
					}
					continue
				}

				if decoration != "" {
					fmt.Fprintf(out, "commit %s %s\n", entry.Hash, decoration)
				} else {
					fmt.Fprintf(out, "commit %s\n", entry.Hash)
				}
				fmt.Fprintf(out, "Author: %s\n", entry.Commit.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(entry.Commit.Timestamp, 0).Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", entry.Commit.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "walk every ancestor, not just first parents")

	return cmd
}

// buildDecoration returns "(HEAD -> main)" for the current HEAD commit on
// a branch, "(HEAD)" when detached, and "" elsewhere.
func buildDecoration(commitHash, headHash object.Hash, branchName string) string {
	if commitHash != headHash {
		return ""
	}
	if branchName != "" {
		return "(HEAD -> " + branchName + ")"
	}
	return "(HEAD)"
}
