package repo

import (
	"fmt"

	"github.com/jmallove/grit/pkg/object"
)

// TreeEntries reads a tree snapshot into a path → blob-hash map.
func (r *Repo) TreeEntries(h object.Hash) (map[string]object.Hash, error) {
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", h, err)
	}
	entries := make(map[string]object.Hash, len(tr.Entries))
	for _, e := range tr.Entries {
		entries[e.Path] = e.BlobHash
	}
	return entries, nil
}

// writeSnapshot stores a path → blob-hash map as a tree object and returns
// its hash. Identical snapshots collapse to the same object.
func (r *Repo) writeSnapshot(entries map[string]object.Hash) (object.Hash, error) {
	tr := &object.TreeObj{Entries: make([]object.TreeEntry, 0, len(entries))}
	for path, blob := range entries {
		tr.Entries = append(tr.Entries, object.TreeEntry{Path: path, BlobHash: blob})
	}
	h, err := r.Store.WriteTree(tr)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return h, nil
}

// headCommit resolves HEAD to its commit hash and object.
func (r *Repo) headCommit() (object.Hash, *object.CommitObj, error) {
	h, err := r.ResolveRef("HEAD")
	if err != nil {
		return "", nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return "", nil, fmt.Errorf("read HEAD commit %s: %w", h, err)
	}
	return h, c, nil
}

// headTree returns the tracked-file state of the current HEAD commit.
func (r *Repo) headTree() (map[string]object.Hash, error) {
	_, c, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	return r.TreeEntries(c.TreeHash)
}

// readBlobData reads a blob from the store and returns its raw bytes.
func (r *Repo) readBlobData(h object.Hash) ([]byte, error) {
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", h, err)
	}
	return blob.Data, nil
}

func copyTree(entries map[string]object.Hash) map[string]object.Hash {
	out := make(map[string]object.Hash, len(entries))
	for p, h := range entries {
		out[p] = h
	}
	return out
}

func treesEqual(a, b map[string]object.Hash) bool {
	if len(a) != len(b) {
		return false
	}
	for p, h := range a {
		if b[p] != h {
			return false
		}
	}
	return true
}
