package repo

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmallove/grit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string persisted in the commit object.
type CommitSigner func(payload []byte) (string, error)

// CreateCommit validates and stores a commit node. Every parent must be a
// known commit (ErrInvalidParent) and tree a known tree object
// (ErrInvalidTree); at most two parents are supported. Empty commits are
// permitted: history is append-only and an unchanged tree is still a valid
// snapshot. The branch model is untouched; callers move pointers.
func (r *Repo) CreateCommit(parents []object.Hash, tree object.Hash, message string, timestamp int64, author string) (object.Hash, error) {
	if len(parents) > 2 {
		return "", fmt.Errorf("create commit: %d parents: %w", len(parents), ErrInvalidParent)
	}
	for _, p := range parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("create commit: parent %s: %w", p, ErrInvalidParent)
		}
	}
	if _, err := r.Store.ReadTree(tree); err != nil {
		return "", fmt.Errorf("create commit: tree %s: %w", tree, ErrInvalidTree)
	}

	return r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  tree,
		Parents:   parents,
		Author:    author,
		Timestamp: timestamp,
		Message:   message,
	})
}

// Commit creates a commit from the staging area and advances the current
// branch (or detached HEAD). When a merge is in progress the commit gets
// both the current head and the recorded merge head as parents, and the
// merge state is cleared.
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	return r.CommitWithSigner(message, author, nil)
}

// CommitWithSigner is Commit with an optional signature over the canonical
// commit payload.
func (r *Repo) CommitWithSigner(message, author string, signer CommitSigner) (object.Hash, error) {
	release, err := r.lockExclusive()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	defer release()

	mergeState, err := r.readMergeState()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	treeHash, err := r.BuildCommitTree()
	if err != nil {
		if mergeState == nil || !errors.Is(err, ErrNothingToCommit) {
			return "", fmt.Errorf("commit: %w", err)
		}
		// A merge resolution may legitimately produce HEAD's own tree
		// (e.g. every conflicted path resolved to ours). The merge commit
		// still records the second parent.
		stg, stgErr := r.ReadStaging()
		if stgErr != nil {
			return "", fmt.Errorf("commit: %w", stgErr)
		}
		head, headErr := r.headTree()
		if headErr != nil {
			return "", fmt.Errorf("commit: %w", headErr)
		}
		treeHash, err = r.writeSnapshot(r.stagedTree(stg, head))
		if err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}

	headHash, _, err := r.headCommit()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parents := []object.Hash{headHash}
	if mergeState != nil {
		parents = append(parents, mergeState.OtherHead)
	}

	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return "", fmt.Errorf("commit: sign: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write: %w", err)
	}

	// Object writes are idempotent and already durable; the pointer and
	// staging updates below are the atomic publish step under the lock.
	if err := r.advanceHead(headHash, commitHash); err != nil {
		return "", fmt.Errorf("commit: advance head: %w", err)
	}
	if err := r.ClearStaging(); err != nil {
		return "", fmt.Errorf("commit: clear staging: %w", err)
	}
	if mergeState != nil {
		if err := r.clearMergeState(); err != nil {
			return "", fmt.Errorf("commit: clear merge state: %w", err)
		}
	}

	return commitHash, nil
}
