package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmallove/grit/pkg/object"
)

// CreateBranch creates a new branch pointing at the given commit.
// Fails with ErrAlreadyExists if the name is taken and ErrNotFound if the
// commit is unknown.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	// The target must be a commit, not merely a stored object: blob and
	// tree ids are never valid branch positions.
	if _, err := r.Store.ReadCommit(target); err != nil {
		return fmt.Errorf("create branch %q: commit %s: %w", name, target, ErrNotFound)
	}
	if err := r.updateRefCAS(branchRefName(name), target, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch: branch %q: %w", name, ErrAlreadyExists)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes the branch ref file. Fails with
// ErrCannotDeleteCurrent if HEAD is attached to the branch and ErrNotFound
// if the branch does not exist. Only the pointer is deleted; history is
// append-only.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch %q: %w", name, ErrCannotDeleteCurrent)
	}

	refPath := filepath.Join(r.GritDir, "refs", "heads", name)
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch: branch %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns the branch names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	headsDir := filepath.Join(r.GritDir, "refs", "heads")

	entries, err := os.ReadDir(headsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch returns the branch name HEAD is attached to, or "" when
// HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}

	const prefix = "refs/heads/"
	if strings.HasPrefix(head, prefix) {
		return strings.TrimPrefix(head, prefix), nil
	}
	return "", nil
}

// SetHead attaches HEAD to a branch (when target names one) or detaches it
// at a commit (when target is a known commit hash). Fails with ErrNotFound
// when the target is neither.
func (r *Repo) SetHead(target string) error {
	if _, err := r.ResolveRef(branchRefName(target)); err == nil {
		return r.writeHead("ref: " + branchRefName(target))
	}
	h := object.Hash(target)
	if r.Store.Has(h) {
		if _, err := r.Store.ReadCommit(h); err != nil {
			return fmt.Errorf("set head: %s is not a commit: %w", target, err)
		}
		return r.writeHead(string(h))
	}
	return fmt.Errorf("set head: target %q: %w", target, ErrNotFound)
}

// resolveCommitish resolves target as a branch name first, then as a raw
// commit hash. The second return value reports whether target named a
// branch.
func (r *Repo) resolveCommitish(target string) (object.Hash, bool, error) {
	if h, err := r.ResolveRef(branchRefName(target)); err == nil {
		return h, true, nil
	}
	h := object.Hash(target)
	if r.Store.Has(h) {
		if _, err := r.Store.ReadCommit(h); err != nil {
			return "", false, fmt.Errorf("%q is not a commit: %w", target, err)
		}
		return h, false, nil
	}
	return "", false, fmt.Errorf("resolve %q: %w", target, ErrNotFound)
}
