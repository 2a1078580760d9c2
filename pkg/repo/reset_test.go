package repo

import (
	"path/filepath"
	"testing"
)

func TestResetSoftKeepsStagingAndWorktree(t *testing.T) {
	r, dir := initRepo(t)
	first := commitFile(t, r, dir, "a.txt", []byte("v1"), "first")
	commitFile(t, r, dir, "a.txt", []byte("v2"), "second")

	if err := r.Stage("pending.txt", []byte("p")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := r.Reset(string(first), ResetSoft); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if mustResolve(t, r, "HEAD") != first {
		t.Fatal("HEAD did not move")
	}
	stg, _ := r.ReadStaging()
	if stg.IsEmpty() {
		t.Fatal("soft reset must keep the staging area")
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "v2" {
		t.Fatalf("a.txt = %q, soft reset must not touch the worktree", got)
	}
}

func TestResetMixedClearsStaging(t *testing.T) {
	r, dir := initRepo(t)
	first := commitFile(t, r, dir, "a.txt", []byte("v1"), "first")
	commitFile(t, r, dir, "a.txt", []byte("v2"), "second")

	if err := r.Stage("pending.txt", []byte("p")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := r.Reset(string(first), ResetMixed); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	stg, _ := r.ReadStaging()
	if !stg.IsEmpty() {
		t.Fatal("mixed reset must clear the staging area")
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "v2" {
		t.Fatalf("a.txt = %q, mixed reset must not touch the worktree", got)
	}
}

func TestResetHardSyncsWorktree(t *testing.T) {
	r, dir := initRepo(t)
	first := commitFile(t, r, dir, "a.txt", []byte("v1"), "first")
	commitFile(t, r, dir, "a.txt", []byte("v2"), "second")
	commitFile(t, r, dir, "b.txt", []byte("b"), "third")

	// Unstaged local noise on top.
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("local"))

	if err := r.Reset(string(first), ResetHard); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "v1" {
		t.Fatalf("a.txt = %q, want %q", got, "v1")
	}
	clean, err := r.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Fatal("worktree should match the target snapshot after hard reset")
	}
}

func TestResetAbandonsMergeInProgress(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("base\n"), "base")

	branchFrom(t, r, "feature")
	commitFile(t, r, dir, "a.txt", []byte("theirs\n"), "their change")
	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	head := commitFile(t, r, dir, "a.txt", []byte("ours\n"), "our change")

	if _, err := r.Merge("feature"); err == nil {
		t.Fatal("expected a conflict")
	}

	if err := r.Reset(string(head), ResetHard); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if merging, _ := r.MergeInProgress(); merging {
		t.Fatal("reset must abandon the in-progress merge")
	}

	// The next ordinary commit must not pick up a stale second parent.
	h := commitFile(t, r, dir, "b.txt", []byte("unrelated\n"), "unrelated")
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 1 {
		t.Fatalf("commit after reset has %d parents (%v), want 1", len(c.Parents), c.Parents)
	}
}

func TestResetHardIsIdempotent(t *testing.T) {
	r, dir := initRepo(t)
	first := commitFile(t, r, dir, "a.txt", []byte("v1"), "first")
	commitFile(t, r, dir, "a.txt", []byte("v2"), "second")

	if err := r.Reset(string(first), ResetHard); err != nil {
		t.Fatalf("first Reset: %v", err)
	}
	if err := r.Reset(string(first), ResetHard); err != nil {
		t.Fatalf("second Reset: %v", err)
	}

	if mustResolve(t, r, "HEAD") != first {
		t.Fatal("HEAD moved on repeated reset")
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "v1" {
		t.Fatalf("a.txt = %q, want %q", got, "v1")
	}
}
