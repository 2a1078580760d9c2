package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmallove/grit/pkg/object"
)

// Staging is the index: pending additions and removals relative to the
// current HEAD tree. Additions map path → blob hash (the blob is already
// in the object store); removals are paths to drop from the next commit.
type Staging struct {
	Additions map[string]object.Hash `json:"additions"`
	Removals  map[string]bool        `json:"removals"`
}

// IsEmpty reports whether the staging area holds no pending change.
func (s *Staging) IsEmpty() bool {
	return len(s.Additions) == 0 && len(s.Removals) == 0
}

func emptyStaging() *Staging {
	return &Staging{
		Additions: make(map[string]object.Hash),
		Removals:  make(map[string]bool),
	}
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GritDir, "index")
}

// ReadStaging loads the staging area from .grit/index. A missing file is
// an empty staging area, not an error.
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyStaging(), nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}

	var stg Staging
	if err := json.Unmarshal(data, &stg); err != nil {
		return nil, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	if stg.Additions == nil {
		stg.Additions = make(map[string]object.Hash)
	}
	if stg.Removals == nil {
		stg.Removals = make(map[string]bool)
	}
	return &stg, nil
}

// WriteStaging atomically writes the staging area to .grit/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GritDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write staging: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write staging: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: close: %w", err)
	}

	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: rename: %w", err)
	}
	return nil
}

// ClearStaging resets the index to empty.
func (r *Repo) ClearStaging() error {
	return r.WriteStaging(emptyStaging())
}

// Stage records content for path as a pending addition: the blob is written
// to the object store and any pending removal for the path is dropped.
// Staging identical content twice is a no-op with no error.
func (r *Repo) Stage(path string, content []byte) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	if err := r.stageInto(stg, path, content); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	return nil
}

func (r *Repo) stageInto(stg *Staging, path string, content []byte) error {
	blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return fmt.Errorf("write blob %q: %w", path, err)
	}
	stg.Additions[path] = blobHash
	delete(stg.Removals, path)
	return nil
}

// StageFile stages the working-directory content of the given paths.
// Paths are repo-relative with forward slashes.
func (r *Repo) StageFile(paths ...string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	for _, p := range paths {
		content, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(p)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stage %q: %w", p, ErrNotFound)
			}
			return fmt.Errorf("stage: read %q: %w", p, err)
		}
		if err := r.stageInto(stg, p, content); err != nil {
			return fmt.Errorf("stage: %w", err)
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	return nil
}

// StageAll stages every non-ignored working-tree file. The walk is
// iterative over an explicit directory worklist so deep trees cannot
// exhaust the stack.
func (r *Repo) StageAll() error {
	files, err := r.workingFiles()
	if err != nil {
		return fmt.Errorf("stage all: %w", err)
	}
	return r.StageFile(files...)
}

// workingFiles lists every non-ignored file under the repository root,
// repo-relative with forward slashes, in sorted order.
func (r *Repo) workingFiles() ([]string, error) {
	var files []string
	worklist := []string{""}

	for len(worklist) > 0 {
		rel := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		entries, err := os.ReadDir(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			childRel := e.Name()
			if rel != "" {
				childRel = rel + "/" + e.Name()
			}
			if r.Ignore != nil && r.Ignore(childRel) {
				continue
			}
			if e.IsDir() {
				worklist = append(worklist, childRel)
				continue
			}
			if e.Type()&fs.ModeSymlink != 0 {
				// Symlinks are out of scope; only regular file content is tracked.
				continue
			}
			files = append(files, childRel)
		}
	}

	return files, nil
}

// Unstage removes any pending addition for path; if the path is tracked in
// HEAD's tree it becomes a pending removal instead. Fails with
// ErrNotTracked when the path is neither staged nor tracked.
func (r *Repo) Unstage(path string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("unstage: %w", err)
	}

	head, err := r.headTree()
	if err != nil {
		return fmt.Errorf("unstage: %w", err)
	}

	_, staged := stg.Additions[path]
	_, tracked := head[path]
	if !staged && !tracked && !stg.Removals[path] {
		return fmt.Errorf("unstage %q: %w", path, ErrNotTracked)
	}

	delete(stg.Additions, path)
	if tracked {
		stg.Removals[path] = true
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("unstage: %w", err)
	}
	return nil
}

// stagedTree returns HEAD's tree with pending additions and removals
// applied: the snapshot the next commit would record.
func (r *Repo) stagedTree(stg *Staging, head map[string]object.Hash) map[string]object.Hash {
	out := copyTree(head)
	for path, blob := range stg.Additions {
		out[path] = blob
	}
	for path := range stg.Removals {
		delete(out, path)
	}
	return out
}

// BuildCommitTree materializes the staged snapshot as a tree object.
// Fails with ErrNothingToCommit when the result is identical to HEAD's
// tree and no pending removal targets an already-absent path.
func (r *Repo) BuildCommitTree() (object.Hash, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("build commit tree: %w", err)
	}
	head, err := r.headTree()
	if err != nil {
		return "", fmt.Errorf("build commit tree: %w", err)
	}

	next := r.stagedTree(stg, head)
	if treesEqual(next, head) {
		removalOfAbsent := false
		for path := range stg.Removals {
			if _, tracked := head[path]; !tracked {
				removalOfAbsent = true
				break
			}
		}
		if !removalOfAbsent {
			return "", fmt.Errorf("build commit tree: %w", ErrNothingToCommit)
		}
	}

	return r.writeSnapshot(next)
}
