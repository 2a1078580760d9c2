package repo

import (
	"fmt"
)

// ResetMode selects how much state Reset rewrites.
type ResetMode int

const (
	// ResetSoft moves the current branch pointer only.
	ResetSoft ResetMode = iota
	// ResetMixed moves the pointer and clears the staging area.
	ResetMixed
	// ResetHard moves the pointer, clears staging, and forces the working
	// tree to the target snapshot. No overwrite guard applies.
	ResetHard
)

// Reset repositions the current branch (or detached HEAD) at target.
// Hard reset is idempotent: running it twice against the same commit
// leaves identical state. Any reset abandons an in-progress merge.
func (r *Repo) Reset(target string, mode ResetMode) error {
	release, err := r.lockExclusive()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	defer release()

	targetHash, _, err := r.resolveCommitish(target)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	// A stale merge state must not turn the next ordinary commit into a
	// two-parent merge commit.
	if err := r.clearMergeState(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	headHash, _, err := r.headCommit()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	cur, err := r.headTree()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if err := r.advanceHead(headHash, targetHash); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if mode == ResetSoft {
		return nil
	}
	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if mode == ResetMixed {
		return nil
	}

	targetCommit, err := r.Store.ReadCommit(targetHash)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	tgt, err := r.TreeEntries(targetCommit.TreeHash)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.applyTreeDiff(DiffTrees(cur, tgt)); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	// applyTreeDiff only touches changed paths; rewrite the full snapshot
	// so a hard reset also repairs unstaged edits to unchanged paths.
	if err := r.writeTreeFiles(tgt); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
