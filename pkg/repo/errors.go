package repo

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors reported to callers. All are wrapped with operation
// context via fmt.Errorf("...: %w", ...), so match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidParent       = errors.New("invalid parent commit")
	ErrInvalidTree         = errors.New("invalid tree")
	ErrDirtyStaging        = errors.New("staging area is not empty")
	ErrWouldOverwrite      = errors.New("would overwrite unstaged local changes")
	ErrAlreadyUpToDate     = errors.New("already up to date")
	ErrNothingToCommit     = errors.New("nothing to commit")
	ErrNotTracked          = errors.New("path is neither staged nor tracked")
	ErrNoCommonAncestor    = errors.New("no common ancestor")
	ErrRepositoryLocked    = errors.New("repository is locked by another operation")
	ErrCannotDeleteCurrent = errors.New("cannot delete the current branch")
	ErrMergeInProgress     = errors.New("merge in progress")
)

// ConflictError reports paths a merge or revert could not reconcile.
// It is a defined terminal state, not a half-applied failure: the caller
// resolves the listed paths and retries or aborts.
type ConflictError struct {
	Op    string // "merge" or "revert"
	Paths []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: conflicts in %d path(s): %s", e.Op, len(e.Paths), strings.Join(e.Paths, ", "))
}

// OverwriteError carries the paths whose unstaged modifications a checkout
// would discard.
type OverwriteError struct {
	Paths []string
}

func (e *OverwriteError) Error() string {
	return fmt.Sprintf("%v: %s", ErrWouldOverwrite, strings.Join(e.Paths, ", "))
}

func (e *OverwriteError) Is(target error) bool {
	return target == ErrWouldOverwrite
}
