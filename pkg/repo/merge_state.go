package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmallove/grit/pkg/object"
)

// MergeState is the on-disk record of a merge stopped on conflicts. It
// survives process restarts; the next Commit consumes it to produce the
// two-parent merge commit.
type MergeState struct {
	OtherHead object.Hash `json:"other_head"`
	Conflicts []string    `json:"conflicts"`
}

func (r *Repo) mergeStatePath() string {
	return filepath.Join(r.GritDir, "MERGE_STATE")
}

// readMergeState returns the active merge state, or nil when no merge is
// in progress.
func (r *Repo) readMergeState() (*MergeState, error) {
	data, err := os.ReadFile(r.mergeStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read merge state: %w", err)
	}
	var ms MergeState
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("read merge state: unmarshal: %w", err)
	}
	return &ms, nil
}

func (r *Repo) writeMergeState(ms *MergeState) error {
	data, err := json.MarshalIndent(ms, "", "  ")
	if err != nil {
		return fmt.Errorf("write merge state: marshal: %w", err)
	}
	tmp, err := os.CreateTemp(r.GritDir, ".merge-state-tmp-*")
	if err != nil {
		return fmt.Errorf("write merge state: tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write merge state: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write merge state: close: %w", err)
	}
	if err := os.Rename(tmpName, r.mergeStatePath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write merge state: rename: %w", err)
	}
	return nil
}

func (r *Repo) clearMergeState() error {
	if err := os.Remove(r.mergeStatePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear merge state: %w", err)
	}
	return nil
}

// MergeInProgress reports whether a conflicted merge awaits resolution.
func (r *Repo) MergeInProgress() (bool, error) {
	ms, err := r.readMergeState()
	if err != nil {
		return false, err
	}
	return ms != nil, nil
}

// MergeAbort discards an in-progress merge: staging is cleared, the
// working tree is restored to HEAD's snapshot, and the merge state is
// removed. Fails with ErrNotFound when no merge is in progress.
func (r *Repo) MergeAbort() error {
	release, err := r.lockExclusive()
	if err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	defer release()

	ms, err := r.readMergeState()
	if err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	if ms == nil {
		return fmt.Errorf("merge abort: no merge in progress: %w", ErrNotFound)
	}

	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	head, err := r.headTree()
	if err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	if err := r.writeTreeFiles(head); err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	// Conflict markers may have been materialized for paths HEAD never
	// tracked (both sides added differently); those files go away too.
	for _, path := range ms.Conflicts {
		if _, tracked := head[path]; !tracked {
			if err := r.removeWorkFile(path); err != nil {
				return fmt.Errorf("merge abort: %w", err)
			}
		}
	}
	if err := r.clearMergeState(); err != nil {
		return fmt.Errorf("merge abort: %w", err)
	}
	return nil
}
