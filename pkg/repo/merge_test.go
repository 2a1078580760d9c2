package repo

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmallove/grit/pkg/object"
)

// branchFrom creates and checks out a branch at the current HEAD.
func branchFrom(t *testing.T, r *Repo, name string) {
	t.Helper()
	head := mustResolve(t, r, "HEAD")
	if err := r.CreateBranch(name, head); err != nil {
		t.Fatalf("CreateBranch %s: %v", name, err)
	}
	if err := r.Checkout(name, false); err != nil {
		t.Fatalf("Checkout %s: %v", name, err)
	}
}

func TestMergeFastForward(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("base"), "base")

	branchFrom(t, r, "feature")
	tip := commitFile(t, r, dir, "a.txt", []byte("improved"), "improve")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	result, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !result.FastForward {
		t.Fatal("expected a fast-forward")
	}
	if result.Commit != tip {
		t.Fatalf("moved to %s, want %s", result.Commit, tip)
	}
	if mustResolve(t, r, DefaultBranch) != tip {
		t.Fatal("branch pointer did not move")
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "improved" {
		t.Fatalf("a.txt = %q after fast-forward", got)
	}
}

func TestMergeFastForwardGuardsUnstagedEdits(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("base"), "base")

	branchFrom(t, r, "feature")
	commitFile(t, r, dir, "a.txt", []byte("improved"), "improve")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	headBefore := mustResolve(t, r, "HEAD")
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("local edit"))

	_, err := r.Merge("feature")
	if !errors.Is(err, ErrWouldOverwrite) {
		t.Fatalf("error = %v, want ErrWouldOverwrite", err)
	}
	var overwrite *OverwriteError
	if !errors.As(err, &overwrite) {
		t.Fatalf("error = %v, want *OverwriteError", err)
	}
	if len(overwrite.Paths) != 1 || overwrite.Paths[0] != "a.txt" {
		t.Fatalf("paths = %v, want [a.txt]", overwrite.Paths)
	}

	// Nothing moved and the edit survives.
	if mustResolve(t, r, "HEAD") != headBefore {
		t.Fatal("refused fast-forward must not move HEAD")
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "local edit" {
		t.Fatalf("a.txt = %q, refused fast-forward must not touch the file", got)
	}
}

func TestMergeAlreadyUpToDate(t *testing.T) {
	r, dir := initRepo(t)
	base := commitFile(t, r, dir, "a.txt", []byte("base"), "base")

	if err := r.CreateBranch("old", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	commitFile(t, r, dir, "a.txt", []byte("newer"), "advance main")

	if _, err := r.Merge("old"); !errors.Is(err, ErrAlreadyUpToDate) {
		t.Fatalf("error = %v, want ErrAlreadyUpToDate", err)
	}
}

func TestMergeDirtyStaging(t *testing.T) {
	r, dir := initRepo(t)
	base := commitFile(t, r, dir, "a.txt", []byte("base"), "base")
	if err := r.CreateBranch("side", base); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if err := r.Stage("pending.txt", []byte("p")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if _, err := r.Merge("side"); !errors.Is(err, ErrDirtyStaging) {
		t.Fatalf("error = %v, want ErrDirtyStaging", err)
	}
}

func TestMergeCleanDivergence(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("a-base"), "base")

	branchFrom(t, r, "feature")
	commitFile(t, r, dir, "b.txt", []byte("b-new"), "add b")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	mainTip := commitFile(t, r, dir, "a.txt", []byte("a-changed"), "change a")
	featureTip := mustResolve(t, r, "feature")

	result, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.FastForward {
		t.Fatal("divergent merge should not fast-forward")
	}

	c, err := r.Store.ReadCommit(result.Commit)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != mainTip || c.Parents[1] != featureTip {
		t.Fatalf("parents = %v, want [%s %s]", c.Parents, mainTip, featureTip)
	}

	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "a-changed" {
		t.Fatalf("a.txt = %q, want %q", got, "a-changed")
	}
	if got := readFile(t, filepath.Join(dir, "b.txt")); got != "b-new" {
		t.Fatalf("b.txt = %q, want %q", got, "b-new")
	}

	clean, err := r.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Fatal("worktree should be clean after a committed merge")
	}
}

func TestMergeConflictAndResolve(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("base\n"), "base")

	branchFrom(t, r, "feature")
	commitFile(t, r, dir, "a.txt", []byte("theirs\n"), "their change")
	commitFile(t, r, dir, "ok.txt", []byte("fine\n"), "their extra file")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	mainTip := commitFile(t, r, dir, "a.txt", []byte("ours\n"), "our change")
	featureTip := mustResolve(t, r, "feature")

	_, err := r.Merge("feature")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v, want *ConflictError", err)
	}
	if len(conflict.Paths) != 1 || conflict.Paths[0] != "a.txt" {
		t.Fatalf("conflict paths = %v, want [a.txt]", conflict.Paths)
	}

	// No commit happened; HEAD still points at our tip.
	if mustResolve(t, r, "HEAD") != mainTip {
		t.Fatal("conflicted merge must not create a commit")
	}

	// Markers are materialized with both sides.
	content := readFile(t, filepath.Join(dir, "a.txt"))
	for _, want := range []string{"<<<<<<< ours", "ours\n", "=======", "theirs\n", ">>>>>>> theirs"} {
		if !strings.Contains(content, want) {
			t.Fatalf("marker content missing %q:\n%s", want, content)
		}
	}

	// The non-conflicted addition is staged, the conflicted path is not.
	stg, _ := r.ReadStaging()
	if _, ok := stg.Additions["ok.txt"]; !ok {
		t.Fatal("ok.txt should be staged as a resolved addition")
	}
	if _, ok := stg.Additions["a.txt"]; ok {
		t.Fatal("conflicted path must not be staged")
	}

	// A second merge is refused while the first is unresolved.
	if _, err := r.Merge("feature"); !errors.Is(err, ErrMergeInProgress) {
		t.Fatalf("error = %v, want ErrMergeInProgress", err)
	}

	// Resolve and commit: the result is a two-parent merge commit.
	if err := r.Stage("a.txt", []byte("resolved\n")); err != nil {
		t.Fatalf("Stage resolution: %v", err)
	}
	mergeHash, err := r.Commit("merge feature", "alice")
	if err != nil {
		t.Fatalf("Commit after resolve: %v", err)
	}
	c, err := r.Store.ReadCommit(mergeHash)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != mainTip || c.Parents[1] != featureTip {
		t.Fatalf("parents = %v, want [%s %s]", c.Parents, mainTip, featureTip)
	}

	if merging, _ := r.MergeInProgress(); merging {
		t.Fatal("merge state should be cleared by the merge commit")
	}
}

func TestMergeAbortRestoresHead(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("base\n"), "base")

	branchFrom(t, r, "feature")
	commitFile(t, r, dir, "a.txt", []byte("theirs\n"), "their change")

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	commitFile(t, r, dir, "a.txt", []byte("ours\n"), "our change")

	if _, err := r.Merge("feature"); err == nil {
		t.Fatal("expected a conflict")
	}
	if err := r.MergeAbort(); err != nil {
		t.Fatalf("MergeAbort: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "ours\n" {
		t.Fatalf("a.txt = %q after abort, want %q", got, "ours\n")
	}
	stg, _ := r.ReadStaging()
	if !stg.IsEmpty() {
		t.Fatal("staging should be empty after abort")
	}
	if merging, _ := r.MergeInProgress(); merging {
		t.Fatal("merge state should be gone after abort")
	}
}

func TestMergeAbortWithoutMerge(t *testing.T) {
	r, _ := initRepo(t)
	if err := r.MergeAbort(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMergeDeleteVersusModifyConflicts(t *testing.T) {
	r, dir := initRepo(t)
	commitFile(t, r, dir, "a.txt", []byte("base\n"), "base")

	branchFrom(t, r, "deleter")
	if err := r.Unstage("a.txt"); err != nil {
		t.Fatalf("Unstage: %v", err)
	}
	if _, err := r.Commit("delete a", "bob"); err != nil {
		t.Fatalf("Commit deletion: %v", err)
	}

	if err := r.Checkout(DefaultBranch, false); err != nil {
		t.Fatalf("Checkout main: %v", err)
	}
	commitFile(t, r, dir, "a.txt", []byte("modified\n"), "modify a")

	_, err := r.Merge("deleter")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v, want *ConflictError", err)
	}
	if len(conflict.Paths) != 1 || conflict.Paths[0] != "a.txt" {
		t.Fatalf("conflict paths = %v, want [a.txt]", conflict.Paths)
	}

	// The marker shows the surviving side's content and an empty other side.
	content := readFile(t, filepath.Join(dir, "a.txt"))
	if !strings.Contains(content, "modified\n") {
		t.Fatalf("our content missing from markers:\n%s", content)
	}
}

func TestFindSplitPointDiamond(t *testing.T) {
	r, _ := initRepo(t)
	root := mustResolve(t, r, "HEAD")
	_, rootCommit, err := r.headCommit()
	if err != nil {
		t.Fatalf("headCommit: %v", err)
	}
	tree := rootCommit.TreeHash

	mk := func(parents []object.Hash, ts int64, msg string) object.Hash {
		t.Helper()
		h, err := r.CreateCommit(parents, tree, msg, ts, "alice")
		if err != nil {
			t.Fatalf("CreateCommit %q: %v", msg, err)
		}
		return h
	}

	base := mk([]object.Hash{root}, 100, "base")
	left := mk([]object.Hash{base}, 200, "left")
	right := mk([]object.Hash{base}, 300, "right")

	split, err := r.FindSplitPoint(left, right)
	if err != nil {
		t.Fatalf("FindSplitPoint: %v", err)
	}
	if split != base {
		t.Fatalf("split = %s, want %s", split, base)
	}

	// Symmetric in its arguments.
	reverse, err := r.FindSplitPoint(right, left)
	if err != nil {
		t.Fatalf("FindSplitPoint reversed: %v", err)
	}
	if reverse != split {
		t.Fatalf("split is not symmetric: %s vs %s", split, reverse)
	}

	// An ancestor pair splits at the ancestor itself.
	split, err = r.FindSplitPoint(base, left)
	if err != nil {
		t.Fatalf("FindSplitPoint ancestor: %v", err)
	}
	if split != base {
		t.Fatalf("split = %s, want %s", split, base)
	}
}

func TestFindSplitPointPrefersNewerOnTie(t *testing.T) {
	r, _ := initRepo(t)
	root := mustResolve(t, r, "HEAD")
	_, rootCommit, err := r.headCommit()
	if err != nil {
		t.Fatalf("headCommit: %v", err)
	}
	tree := rootCommit.TreeHash

	mk := func(parents []object.Hash, ts int64, msg string) object.Hash {
		t.Helper()
		h, err := r.CreateCommit(parents, tree, msg, ts, "alice")
		if err != nil {
			t.Fatalf("CreateCommit %q: %v", msg, err)
		}
		return h
	}

	// Criss-cross: both tips see both ancestors at equal distance.
	older := mk([]object.Hash{root}, 100, "older ancestor")
	newer := mk([]object.Hash{root}, 200, "newer ancestor")
	tipA := mk([]object.Hash{older, newer}, 300, "tip a")
	tipB := mk([]object.Hash{newer, older}, 300, "tip b")

	split, err := r.FindSplitPoint(tipA, tipB)
	if err != nil {
		t.Fatalf("FindSplitPoint: %v", err)
	}
	if split != newer {
		t.Fatalf("split = %s, want the newer ancestor %s", split, newer)
	}
}
