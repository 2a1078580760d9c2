package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmallove/grit/pkg/object"
)

// DefaultBranch is the branch HEAD attaches to in a fresh repository.
const DefaultBranch = "main"

// Init creates a new grit repository at path: the .grit/ directory
// structure, a root commit with an empty tree, and HEAD attached to main.
// Every later pair of commits therefore shares at least the root as a
// common ancestor. Returns an error if a repository already exists.
func Init(path string) (*Repo, error) {
	gritDir := filepath.Join(path, ".grit")

	if _, err := os.Stat(gritDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gritDir)
	}

	dirs := []string{
		filepath.Join(gritDir, "objects"),
		filepath.Join(gritDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	r := &Repo{
		RootDir: path,
		GritDir: gritDir,
		Store:   object.NewStore(gritDir),
		Ignore:  LoadIgnore(path),
	}

	// Root commit: empty tree, no parents.
	treeHash, err := r.Store.WriteTree(&object.TreeObj{})
	if err != nil {
		return nil, fmt.Errorf("init: write empty tree: %w", err)
	}
	rootHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Author:    "grit",
		Timestamp: time.Now().Unix(),
		Message:   "initial commit",
	})
	if err != nil {
		return nil, fmt.Errorf("init: write root commit: %w", err)
	}

	if err := r.updateRefCAS(branchRefName(DefaultBranch), rootHash, ""); err != nil {
		return nil, fmt.Errorf("init: create %s: %w", DefaultBranch, err)
	}
	if err := r.writeHead("ref: " + branchRefName(DefaultBranch)); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return r, nil
}

// Open searches upward from path for a .grit/ directory and opens the
// repository. Returns ErrNotFound if no repository is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gritDir := filepath.Join(cur, ".grit")
		info, err := os.Stat(gritDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				GritDir: gritDir,
				Store:   object.NewStore(gritDir),
				Ignore:  LoadIgnore(cur),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a grit repository (or any parent up to /): %w", ErrNotFound)
		}
		cur = parent
	}
}
