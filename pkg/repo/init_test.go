package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesAttachedHead(t *testing.T) {
	r, _ := initRepo(t)

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != DefaultBranch {
		t.Fatalf("branch = %q, want %q", branch, DefaultBranch)
	}

	// The root commit must resolve and carry an empty tree.
	_, c, err := r.headCommit()
	if err != nil {
		t.Fatalf("headCommit: %v", err)
	}
	if len(c.Parents) != 0 {
		t.Fatalf("root commit has %d parents", len(c.Parents))
	}
	entries, err := r.TreeEntries(c.TreeHash)
	if err != nil {
		t.Fatalf("TreeEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("root tree has %d entries, want 0", len(entries))
	}
}

func TestInitTwiceFails(t *testing.T) {
	_, dir := initRepo(t)
	if _, err := Init(dir); err == nil {
		t.Fatal("second Init should fail")
	}
}

func TestOpenSearchesUpward(t *testing.T) {
	_, dir := initRepo(t)

	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r, err := Open(nested)
	if err != nil {
		t.Fatalf("Open from nested dir: %v", err)
	}
	if r.RootDir != dir {
		t.Fatalf("RootDir = %q, want %q", r.RootDir, dir)
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
