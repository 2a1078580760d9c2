package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmallove/grit/pkg/object"
)

// Checkout moves HEAD to target (branch name or commit hash) and syncs the
// working tree to the target snapshot. Untracked files are left alone.
//
// Guards, unless force is set: no merge may be in progress
// (ErrMergeInProgress), the staging area must be empty
// (ErrDirtyStaging), and no path touched by the switch may carry unstaged
// local modifications (OverwriteError listing every endangered path).
// A forced checkout abandons an in-progress merge.
func (r *Repo) Checkout(target string, force bool) error {
	release, err := r.lockExclusive()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	defer release()

	targetHash, isBranch, err := r.resolveCommitish(target)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	ms, err := r.readMergeState()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if !force {
		if ms != nil {
			return fmt.Errorf("checkout: %w", ErrMergeInProgress)
		}
		stg, err := r.ReadStaging()
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if !stg.IsEmpty() {
			return fmt.Errorf("checkout: %w", ErrDirtyStaging)
		}
	}

	cur, err := r.headTree()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	targetCommit, err := r.Store.ReadCommit(targetHash)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	tgt, err := r.TreeEntries(targetCommit.TreeHash)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	changes := DiffTrees(cur, tgt)
	if !force {
		endangered, err := r.endangeredPaths(cur, tgt, changes)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if len(endangered) > 0 {
			return &OverwriteError{Paths: endangered}
		}
	}

	if err := r.applyTreeDiff(changes); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if isBranch {
		if err := r.writeHead("ref: " + branchRefName(target)); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	} else {
		if err := r.writeHead(string(targetHash)); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}

	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if ms != nil {
		if err := r.clearMergeState(); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}
	return nil
}

// endangeredPaths lists the changed paths whose working copy differs from
// the snapshot the switch would replace, i.e. unstaged edits a checkout
// would silently destroy.
func (r *Repo) endangeredPaths(cur, tgt map[string]object.Hash, changes map[string]Change) ([]string, error) {
	var endangered []string
	for _, path := range sortedPaths(changes) {
		content, err := os.ReadFile(r.workPath(path))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		onDisk := object.HashObject(object.TypeBlob, content)

		if curBlob, tracked := cur[path]; tracked {
			if onDisk != curBlob {
				endangered = append(endangered, path)
			}
			continue
		}
		// Untracked file colliding with an incoming path: only a problem
		// when its content is not already what the target would write.
		if onDisk != tgt[path] {
			endangered = append(endangered, path)
		}
	}
	return endangered, nil
}

// applyTreeDiff syncs the working tree across a snapshot change: added
// and modified paths are written, removed paths are deleted with emptied
// parent directories pruned.
func (r *Repo) applyTreeDiff(changes map[string]Change) error {
	for _, path := range sortedPaths(changes) {
		ch := changes[path]
		switch ch.Kind {
		case Added, Modified:
			if err := r.writeWorkFile(path, ch.NewBlob); err != nil {
				return err
			}
		case Removed:
			if err := r.removeWorkFile(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeTreeFiles writes every entry of a snapshot to the working tree.
func (r *Repo) writeTreeFiles(entries map[string]object.Hash) error {
	for _, path := range sortedPaths(entries) {
		if err := r.writeWorkFile(path, entries[path]); err != nil {
			return err
		}
	}
	return nil
}

// workPath maps a repo-relative slash path to its absolute location.
func (r *Repo) workPath(path string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(path))
}

func writeFileMkdir(abs string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, data, 0o644)
}

func (r *Repo) writeWorkFile(path string, blob object.Hash) error {
	data, err := r.readBlobData(blob)
	if err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := writeFileMkdir(r.workPath(path), data); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// removeWorkFile deletes a working file and prunes any parent directories
// the deletion emptied, stopping at the repository root.
func (r *Repo) removeWorkFile(path string) error {
	abs := r.workPath(path)
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", path, err)
	}

	dir := filepath.Dir(abs)
	root := filepath.Clean(r.RootDir)
	for dir != root && strings.HasPrefix(dir, root) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
