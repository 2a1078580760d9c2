package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmallove/grit/pkg/object"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func initRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r, dir
}

// commitFile writes, stages, and commits a single file, returning the new
// commit hash.
func commitFile(t *testing.T, r *Repo, dir, name string, content []byte, message string) object.Hash {
	t.Helper()
	writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
	if err := r.StageFile(name); err != nil {
		t.Fatalf("StageFile %s: %v", name, err)
	}
	h, err := r.Commit(message, "alice")
	if err != nil {
		t.Fatalf("Commit %q: %v", message, err)
	}
	return h
}

func mustResolve(t *testing.T, r *Repo, name string) object.Hash {
	t.Helper()
	h, err := r.ResolveRef(name)
	if err != nil {
		t.Fatalf("ResolveRef %s: %v", name, err)
	}
	return h
}
