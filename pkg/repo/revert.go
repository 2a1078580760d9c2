package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmallove/grit/pkg/object"
)

// Revert applies the inverse of a commit's changes on top of HEAD and
// commits the result with HEAD as the single parent.
//
// Each change the commit introduced must still be in effect at HEAD: the
// current blob for a path has to match what the reverted commit left
// there (a path it added or modified), or the path has to still be absent
// (a path it removed). Any mismatch aborts the whole operation with a
// *ConflictError; nothing is partially applied. A path already at the
// reverted-to content is treated as done, not as a conflict.
func (r *Repo) Revert(target string) (object.Hash, error) {
	release, err := r.lockExclusive()
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	defer release()

	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	if !stg.IsEmpty() {
		return "", fmt.Errorf("revert: %w", ErrDirtyStaging)
	}

	targetHash, _, err := r.resolveCommitish(target)
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	targetCommit, err := r.Store.ReadCommit(targetHash)
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}

	after, err := r.TreeEntries(targetCommit.TreeHash)
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	before := map[string]object.Hash{}
	if len(targetCommit.Parents) > 0 {
		parentCommit, err := r.Store.ReadCommit(targetCommit.Parents[0])
		if err != nil {
			return "", fmt.Errorf("revert: %w", err)
		}
		if before, err = r.TreeEntries(parentCommit.TreeHash); err != nil {
			return "", fmt.Errorf("revert: %w", err)
		}
	}

	headHash, _, err := r.headCommit()
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	cur, err := r.headTree()
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}

	reverted, conflicts := invertChanges(DiffTrees(before, after), cur)
	if len(conflicts) > 0 {
		return "", &ConflictError{Op: "revert", Paths: conflicts}
	}

	treeHash, err := r.writeSnapshot(reverted)
	if err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}

	subject := targetCommit.Message
	if i := strings.IndexByte(subject, '\n'); i >= 0 {
		subject = subject[:i]
	}
	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   []object.Hash{headHash},
		Author:    r.DefaultAuthor(),
		Timestamp: time.Now().Unix(),
		Message:   fmt.Sprintf("Revert %q", subject),
	})
	if err != nil {
		return "", fmt.Errorf("revert: write commit: %w", err)
	}

	if err := r.applyTreeDiff(DiffTrees(cur, reverted)); err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	if err := r.advanceHead(headHash, commitHash); err != nil {
		return "", fmt.Errorf("revert: %w", err)
	}
	return commitHash, nil
}

// invertChanges undoes a set of changes against the cur snapshot. The
// returned conflict list is non-empty when any path no longer carries the
// state the change left behind; in that case the snapshot result is
// meaningless and must be discarded.
func invertChanges(changes map[string]Change, cur map[string]object.Hash) (map[string]object.Hash, []string) {
	out := copyTree(cur)
	var conflicts []string

	for _, path := range sortedPaths(changes) {
		ch := changes[path]
		curBlob, present := cur[path]

		switch ch.Kind {
		case Added:
			switch {
			case present && curBlob == ch.NewBlob:
				delete(out, path)
			case !present:
				// already gone
			default:
				conflicts = append(conflicts, path)
			}
		case Removed:
			switch {
			case !present:
				out[path] = ch.OldBlob
			case curBlob == ch.OldBlob:
				// already restored
			default:
				conflicts = append(conflicts, path)
			}
		case Modified:
			switch {
			case present && curBlob == ch.NewBlob:
				out[path] = ch.OldBlob
			case present && curBlob == ch.OldBlob:
				// already reverted
			default:
				conflicts = append(conflicts, path)
			}
		}
	}
	return out, conflicts
}
