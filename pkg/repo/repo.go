// Package repo implements the grit repository engine: commit graph and
// branch model, staging area, tree diff, three-way merge, and working-tree
// synchronization over a content-addressed object store.
package repo

import (
	"github.com/jmallove/grit/pkg/object"
)

// Repo represents an opened grit repository. All operations take the Repo
// explicitly; there is no ambient current-repository state.
type Repo struct {
	RootDir string        // working directory root
	GritDir string        // .grit/ directory
	Store   *object.Store // content-addressed object store

	// Ignore filters paths out of working-tree scans (status, add-all).
	// The engine never interprets pattern syntax itself; Init/Open install
	// a .gritignore-backed predicate, and callers may replace it.
	Ignore IgnoreFunc
}
