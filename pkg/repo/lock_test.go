package repo

import (
	"errors"
	"testing"
)

func TestLockExcludesSecondHolder(t *testing.T) {
	r, _ := initRepo(t)

	release, err := r.lockExclusive()
	if err != nil {
		t.Fatalf("first lockExclusive: %v", err)
	}

	// A competing commit must give up with ErrRepositoryLocked instead of
	// blocking forever.
	if err := r.Stage("a.txt", []byte("v")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	_, err = r.Commit("blocked", "alice")
	if !errors.Is(err, ErrRepositoryLocked) {
		t.Fatalf("error = %v, want ErrRepositoryLocked", err)
	}

	release()

	// After release the same operation goes through.
	if _, err := r.Commit("unblocked", "alice"); err != nil {
		t.Fatalf("Commit after release: %v", err)
	}
}

func TestLockReleaseAllowsReacquire(t *testing.T) {
	r, _ := initRepo(t)

	release, err := r.lockExclusive()
	if err != nil {
		t.Fatalf("lockExclusive: %v", err)
	}
	release()

	release2, err := r.lockExclusive()
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	release2()
}
