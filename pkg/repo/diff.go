package repo

import (
	"sort"

	"github.com/jmallove/grit/pkg/object"
)

// ChangeKind classifies what happened to a path between two tree snapshots.
type ChangeKind int

const (
	Added    ChangeKind = iota // path exists only in the new tree
	Removed                    // path exists only in the old tree
	Modified                   // path exists in both with differing blobs
)

// Change records a single path-level difference. OldBlob is set for
// Removed and Modified, NewBlob for Added and Modified.
type Change struct {
	Kind    ChangeKind
	OldBlob object.Hash
	NewBlob object.Hash
}

// DiffTrees computes the path-level difference between two snapshots.
// Paths with identical blob hashes are omitted. This is the single diff
// primitive reused by status, commit-tree construction, merge, and revert.
func DiffTrees(a, b map[string]object.Hash) map[string]Change {
	changes := make(map[string]Change)

	for path, oldBlob := range a {
		newBlob, inB := b[path]
		switch {
		case !inB:
			changes[path] = Change{Kind: Removed, OldBlob: oldBlob}
		case newBlob != oldBlob:
			changes[path] = Change{Kind: Modified, OldBlob: oldBlob, NewBlob: newBlob}
		}
	}
	for path, newBlob := range b {
		if _, inA := a[path]; !inA {
			changes[path] = Change{Kind: Added, NewBlob: newBlob}
		}
	}
	return changes
}

// Diff loads two tree objects and computes their path-level difference.
func (r *Repo) Diff(treeA, treeB object.Hash) (map[string]Change, error) {
	a, err := r.TreeEntries(treeA)
	if err != nil {
		return nil, err
	}
	b, err := r.TreeEntries(treeB)
	if err != nil {
		return nil, err
	}
	return DiffTrees(a, b), nil
}

// sortedPaths returns the keys of a change map in lexical order.
func sortedPaths[V any](m map[string]V) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
