package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmallove/grit/pkg/object"
	"github.com/jmallove/grit/pkg/repo"
	"github.com/jmallove/grit/pkg/textdiff"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [commit [commit]]",
		Short: "Show line-level changes between snapshots",
		Long: `With no arguments, compares HEAD against the working tree.
With one commit, compares it against the working tree.
With two commits, compares the first against the second.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			base := "HEAD"
			if len(args) >= 1 {
				base = args[0]
			}
			baseTree, err := commitTreeEntries(r, base)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				otherTree, err := commitTreeEntries(r, args[1])
				if err != nil {
					return err
				}
				return printTreeDiff(out, r, baseTree, otherTree)
			}
			return printWorktreeDiff(out, r, baseTree)
		},
	}
	return cmd
}

func commitTreeEntries(r *repo.Repo, name string) (map[string]object.Hash, error) {
	h, err := r.ResolveRef(name)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", name, err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, err
	}
	return r.TreeEntries(c.TreeHash)
}

func printTreeDiff(out io.Writer, r *repo.Repo, a, b map[string]object.Hash) error {
	changes := repo.DiffTrees(a, b)
	for _, path := range sortedChangePaths(changes) {
		ch := changes[path]
		oldData, newData, err := changeBlobs(r, ch)
		if err != nil {
			return err
		}
		printFileDiff(out, path, ch.Kind, oldData, newData)
	}
	return nil
}

func printWorktreeDiff(out io.Writer, r *repo.Repo, base map[string]object.Hash) error {
	paths := make([]string, 0, len(base))
	for p := range base {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		oldData, err := readStoredBlob(r, base[path])
		if err != nil {
			return err
		}
		newData, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				printFileDiff(out, path, repo.Removed, oldData, nil)
				continue
			}
			return err
		}
		if object.HashObject(object.TypeBlob, newData) == base[path] {
			continue
		}
		printFileDiff(out, path, repo.Modified, oldData, newData)
	}
	return nil
}

func changeBlobs(r *repo.Repo, ch repo.Change) (oldData, newData []byte, err error) {
	if ch.OldBlob != "" {
		if oldData, err = readStoredBlob(r, ch.OldBlob); err != nil {
			return nil, nil, err
		}
	}
	if ch.NewBlob != "" {
		if newData, err = readStoredBlob(r, ch.NewBlob); err != nil {
			return nil, nil, err
		}
	}
	return oldData, newData, nil
}

func readStoredBlob(r *repo.Repo, h object.Hash) ([]byte, error) {
	b, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

func printFileDiff(out io.Writer, path string, kind repo.ChangeKind, oldData, newData []byte) {
	switch kind {
	case repo.Added:
		fmt.Fprintf(out, "added: %s\n", path)
	case repo.Removed:
		fmt.Fprintf(out, "removed: %s\n", path)
	default:
		fmt.Fprintf(out, "modified: %s\n", path)
	}
	ops := textdiff.Lines(oldData, newData)
	if textdiff.Changed(ops) {
		fmt.Fprint(out, textdiff.Format(ops))
	}
	fmt.Fprintln(out)
}

func sortedChangePaths(changes map[string]repo.Change) []string {
	paths := make([]string, 0, len(changes))
	for p := range changes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
