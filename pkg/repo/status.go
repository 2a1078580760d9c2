package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmallove/grit/pkg/object"
)

// FileStatus is the single classification of a path produced by Status.
type FileStatus int

const (
	StatusClean            FileStatus = iota // tracked, unstaged, matches HEAD
	StatusUntracked                          // on disk, neither staged nor tracked
	StatusStagedAdded                        // pending addition in the index
	StatusStagedRemoved                      // pending removal in the index
	StatusModifiedUnstaged                   // tracked, working copy differs from HEAD
	StatusDeletedUnstaged                    // tracked, missing from the working tree
)

func (s FileStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusUntracked:
		return "untracked"
	case StatusStagedAdded:
		return "staged-added"
	case StatusStagedRemoved:
		return "staged-removed"
	case StatusModifiedUnstaged:
		return "modified-unstaged"
	case StatusDeletedUnstaged:
		return "deleted-unstaged"
	}
	return "unknown"
}

// StatusEntry records the classification of a single path.
type StatusEntry struct {
	Path   string
	Status FileStatus
}

// Status compares HEAD's tree, the staging area, and the working directory
// and classifies every path into exactly one FileStatus. Working-tree
// paths pass through the repository's ignore predicate before inclusion.
// Entries come back sorted by path, with Clean paths included so callers
// can verify full-tree cleanliness.
func (r *Repo) Status() ([]StatusEntry, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	head, err := r.headTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	workList, err := r.workingFiles()
	if err != nil {
		return nil, fmt.Errorf("status: walk: %w", err)
	}
	onDisk := make(map[string]bool, len(workList))
	for _, p := range workList {
		onDisk[p] = true
	}

	paths := make(map[string]bool, len(head)+len(workList))
	for p := range head {
		paths[p] = true
	}
	for p := range stg.Additions {
		paths[p] = true
	}
	for p := range stg.Removals {
		paths[p] = true
	}
	for _, p := range workList {
		paths[p] = true
	}

	entries := make([]StatusEntry, 0, len(paths))
	for path := range paths {
		st, err := r.classify(path, stg, head, onDisk[path])
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		entries = append(entries, StatusEntry{Path: path, Status: st})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

func (r *Repo) classify(path string, stg *Staging, head map[string]object.Hash, onDisk bool) (FileStatus, error) {
	if stg.Removals[path] {
		return StatusStagedRemoved, nil
	}
	if _, staged := stg.Additions[path]; staged {
		return StatusStagedAdded, nil
	}

	headBlob, tracked := head[path]
	if !tracked {
		return StatusUntracked, nil
	}
	if !onDisk {
		return StatusDeletedUnstaged, nil
	}

	content, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", path, err)
	}
	if object.HashObject(object.TypeBlob, content) != headBlob {
		return StatusModifiedUnstaged, nil
	}
	return StatusClean, nil
}

// IsClean reports whether every path is Clean: nothing staged, nothing
// modified, nothing untracked-but-tracked-missing.
func (r *Repo) IsClean() (bool, error) {
	entries, err := r.Status()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Status != StatusClean && e.Status != StatusUntracked {
			return false, nil
		}
	}
	return true, nil
}
