package repo

import (
	"fmt"
	"time"

	"github.com/jmallove/grit/pkg/object"
)

// MergeResult describes a merge that completed without conflicts.
type MergeResult struct {
	Commit      object.Hash
	FastForward bool
}

// ancestorDistances BFSes parent edges from start, recording the shortest
// edge distance to every reachable commit.
func (r *Repo) ancestorDistances(start object.Hash) (map[object.Hash]int, error) {
	dist := map[object.Hash]int{start: 0}
	queue := []object.Hash{start}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("read commit %s: %w", h, err)
		}
		for _, p := range c.Parents {
			if _, seen := dist[p]; seen {
				continue
			}
			dist[p] = dist[h] + 1
			queue = append(queue, p)
		}
	}
	return dist, nil
}

// FindSplitPoint returns the best common ancestor of a and b: the common
// ancestor minimizing the summed shortest distances to both commits.
// Ties prefer the larger timestamp, then the smaller hash, making the
// result deterministic and symmetric in its arguments.
// ErrNoCommonAncestor is only possible on graphs with disconnected roots.
func (r *Repo) FindSplitPoint(a, b object.Hash) (object.Hash, error) {
	distA, err := r.ancestorDistances(a)
	if err != nil {
		return "", fmt.Errorf("split point: %w", err)
	}
	distB, err := r.ancestorDistances(b)
	if err != nil {
		return "", fmt.Errorf("split point: %w", err)
	}

	var (
		best      object.Hash
		bestDist  int
		bestStamp int64
		found     bool
	)
	for h, da := range distA {
		db, common := distB[h]
		if !common {
			continue
		}
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return "", fmt.Errorf("split point: read %s: %w", h, err)
		}
		total := da + db
		switch {
		case !found,
			total < bestDist,
			total == bestDist && c.Timestamp > bestStamp,
			total == bestDist && c.Timestamp == bestStamp && h < best:
			best, bestDist, bestStamp, found = h, total, c.Timestamp, true
		}
	}
	if !found {
		return "", fmt.Errorf("split point of %s and %s: %w", a, b, ErrNoCommonAncestor)
	}
	return best, nil
}

// isAncestor reports whether anc is reachable from desc over parent edges
// (a commit is its own ancestor).
func (r *Repo) isAncestor(anc, desc object.Hash) (bool, error) {
	dist, err := r.ancestorDistances(desc)
	if err != nil {
		return false, err
	}
	_, ok := dist[anc]
	return ok, nil
}

// Merge merges target (branch name or commit hash) into the current HEAD.
//
// Preconditions: no merge already in progress (ErrMergeInProgress) and an
// empty staging area (ErrDirtyStaging). ErrAlreadyUpToDate when target is
// already contained in HEAD; a fast-forward pointer move when HEAD is
// contained in target (refused with an *OverwriteError if the sync would
// clobber unstaged local edits). Otherwise a three-way merge against the split
// point: per-path changes from each side are combined, identical changes
// collapse, and paths changed differently on both sides conflict.
//
// A clean merge writes the merged snapshot, creates a two-parent commit,
// and syncs the working tree. A conflicted merge creates no commit: it
// stages the non-conflicted resolutions, materializes conflict markers
// into the working tree, records the merge state for a later Commit or
// MergeAbort, and returns a *ConflictError listing the paths.
func (r *Repo) Merge(target string) (*MergeResult, error) {
	release, err := r.lockExclusive()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	defer release()

	ms, err := r.readMergeState()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if ms != nil {
		return nil, fmt.Errorf("merge: %w", ErrMergeInProgress)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if !stg.IsEmpty() {
		return nil, fmt.Errorf("merge: %w", ErrDirtyStaging)
	}

	otherHash, _, err := r.resolveCommitish(target)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	headHash, _, err := r.headCommit()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	if contained, err := r.isAncestor(otherHash, headHash); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	} else if contained {
		return nil, fmt.Errorf("merge %q: %w", target, ErrAlreadyUpToDate)
	}

	cur, err := r.headTree()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	otherCommit, err := r.Store.ReadCommit(otherHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	other, err := r.TreeEntries(otherCommit.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	if contains, err := r.isAncestor(headHash, otherHash); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	} else if contains {
		// Fast-forward: no divergence, move the pointer and sync. Unstaged
		// edits on paths the sync would rewrite still block the move.
		changes := DiffTrees(cur, other)
		endangered, err := r.endangeredPaths(cur, other, changes)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if len(endangered) > 0 {
			return nil, &OverwriteError{Paths: endangered}
		}
		if err := r.applyTreeDiff(changes); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.advanceHead(headHash, otherHash); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		return &MergeResult{Commit: otherHash, FastForward: true}, nil
	}

	baseHash, err := r.FindSplitPoint(headHash, otherHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	baseCommit, err := r.Store.ReadCommit(baseHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	base, err := r.TreeEntries(baseCommit.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	merged, conflicts := resolveThreeWay(base, cur, other)

	if len(conflicts) == 0 {
		treeHash, err := r.writeSnapshot(merged)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		commitHash, err := r.Store.WriteCommit(&object.CommitObj{
			TreeHash:  treeHash,
			Parents:   []object.Hash{headHash, otherHash},
			Author:    r.DefaultAuthor(),
			Timestamp: time.Now().Unix(),
			Message:   fmt.Sprintf("merge %s", target),
		})
		if err != nil {
			return nil, fmt.Errorf("merge: write commit: %w", err)
		}
		if err := r.applyTreeDiff(DiffTrees(cur, merged)); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.advanceHead(headHash, commitHash); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		return &MergeResult{Commit: commitHash}, nil
	}

	// Conflicted: stage what did resolve, leave markers for what did not.
	conflicted := make(map[string]bool, len(conflicts))
	for _, path := range conflicts {
		conflicted[path] = true
	}
	for path, blob := range merged {
		if !conflicted[path] && cur[path] != blob {
			stg.Additions[path] = blob
		}
	}
	for path := range cur {
		if _, kept := merged[path]; !kept && !conflicted[path] {
			stg.Removals[path] = true
		}
	}
	if err := r.WriteStaging(stg); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if err := r.applyTreeDiff(DiffTrees(cur, merged)); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if err := r.writeConflictMarkers(conflicts, cur, other); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if err := r.writeMergeState(&MergeState{OtherHead: otherHash, Conflicts: conflicts}); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return nil, &ConflictError{Op: "merge", Paths: conflicts}
}

// resolveThreeWay combines per-path changes from base→cur and base→other.
// A change on one side only wins; identical changes collapse; anything
// else (changed differently on both sides, including delete vs modify and
// divergent additions) is a conflict. The merged snapshot keeps the
// current side's value for conflicted paths; callers overlay markers.
func resolveThreeWay(base, cur, other map[string]object.Hash) (map[string]object.Hash, []string) {
	ours := DiffTrees(base, cur)
	theirs := DiffTrees(base, other)

	merged := copyTree(base)
	var conflicts []string

	apply := func(path string, ch Change) {
		if ch.Kind == Removed {
			delete(merged, path)
			return
		}
		merged[path] = ch.NewBlob
	}

	for _, path := range sortedPaths(ours) {
		oc := ours[path]
		tc, both := theirs[path]
		if !both {
			apply(path, oc)
			continue
		}
		if oc.Kind == tc.Kind && oc.NewBlob == tc.NewBlob {
			apply(path, oc)
			continue
		}
		conflicts = append(conflicts, path)
		apply(path, oc)
	}
	for _, path := range sortedPaths(theirs) {
		if _, both := ours[path]; !both {
			apply(path, theirs[path])
		}
	}
	return merged, conflicts
}

// writeConflictMarkers materializes whole-file conflict content for each
// conflicted path. A side that deleted the path contributes an empty body.
func (r *Repo) writeConflictMarkers(conflicts []string, cur, other map[string]object.Hash) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}

	for _, path := range conflicts {
		var oursData, theirsData []byte
		if blob, ok := cur[path]; ok {
			if oursData, err = r.readBlobData(blob); err != nil {
				return err
			}
		}
		if blob, ok := other[path]; ok {
			if theirsData, err = r.readBlobData(blob); err != nil {
				return err
			}
		}

		content := fmt.Sprintf("<<<<<<< %s\n%s=======\n%s>>>>>>> %s\n",
			cfg.Merge.OursLabel, ensureTrailingNewline(oursData),
			ensureTrailingNewline(theirsData), cfg.Merge.TheirsLabel)

		abs := r.workPath(path)
		if err := writeFileMkdir(abs, []byte(content)); err != nil {
			return fmt.Errorf("conflict marker %q: %w", path, err)
		}
	}
	return nil
}

func ensureTrailingNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(append([]byte{}, b...), '\n')
}
