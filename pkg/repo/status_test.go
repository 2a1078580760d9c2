package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func statusOf(t *testing.T, r *Repo, path string) FileStatus {
	t.Helper()
	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, e := range entries {
		if e.Path == path {
			return e.Status
		}
	}
	t.Fatalf("path %q missing from status", path)
	return 0
}

func TestStatusClassifications(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "clean.txt", []byte("c"), "base")
	commitFile(t, r, dir, "modified.txt", []byte("m1"), "base 2")
	commitFile(t, r, dir, "deleted.txt", []byte("d"), "base 3")
	commitFile(t, r, dir, "removed.txt", []byte("r"), "base 4")

	writeFile(t, filepath.Join(dir, "modified.txt"), []byte("m2"))
	if err := os.Remove(filepath.Join(dir, "deleted.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	writeFile(t, filepath.Join(dir, "untracked.txt"), []byte("u"))
	if err := r.Stage("staged.txt", []byte("s")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := r.Unstage("removed.txt"); err != nil {
		t.Fatalf("Unstage: %v", err)
	}

	want := map[string]FileStatus{
		"clean.txt":     StatusClean,
		"modified.txt":  StatusModifiedUnstaged,
		"deleted.txt":   StatusDeletedUnstaged,
		"untracked.txt": StatusUntracked,
		"staged.txt":    StatusStagedAdded,
		"removed.txt":   StatusStagedRemoved,
	}
	for path, status := range want {
		if got := statusOf(t, r, path); got != status {
			t.Errorf("%s = %v, want %v", path, got, status)
		}
	}
}

func TestIsCleanAfterCommit(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("v1"), "add a")

	clean, err := r.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Fatal("repo should be clean right after committing")
	}

	writeFile(t, filepath.Join(dir, "a.txt"), []byte("v2"))
	clean, err = r.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if clean {
		t.Fatal("unstaged edit should make the repo dirty")
	}
}
