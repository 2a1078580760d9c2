package repo

import (
	"container/heap"
	"fmt"
	"io"

	"github.com/jmallove/grit/pkg/object"
)

// LogMode selects the history traversal shape.
type LogMode int

const (
	// FirstParent follows only first parents: the linear mainline view.
	FirstParent LogMode = iota
	// AllAncestors visits every reachable ancestor exactly once, ordered
	// by decreasing timestamp with the commit hash as a deterministic
	// tie-break.
	AllAncestors
)

// LogEntry is one commit yielded by a history walk.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// LogWalker lazily walks commit history. Calling Next repeatedly yields
// entries until io.EOF; the walker loads commits on demand so deep
// histories cost nothing up front.
type LogWalker struct {
	repo     *Repo
	mode     LogMode
	next     object.Hash // FirstParent cursor; empty when exhausted
	frontier commitHeap  // AllAncestors frontier
	visited  map[object.Hash]bool
}

// Log starts a history walk from the given commit. The start commit must
// exist (ErrNotFound otherwise).
func (r *Repo) Log(start object.Hash, mode LogMode) (*LogWalker, error) {
	c, err := r.Store.ReadCommit(start)
	if err != nil {
		return nil, fmt.Errorf("log: start %s: %w", start, err)
	}

	w := &LogWalker{repo: r, mode: mode}
	switch mode {
	case FirstParent:
		w.next = start
	case AllAncestors:
		w.visited = map[object.Hash]bool{start: true}
		heap.Push(&w.frontier, heapEntry{hash: start, commit: c})
	default:
		return nil, fmt.Errorf("log: unknown mode %d", mode)
	}
	return w, nil
}

// Next returns the next commit in the walk, or io.EOF when history is
// exhausted.
func (w *LogWalker) Next() (*LogEntry, error) {
	if w.mode == FirstParent {
		return w.nextFirstParent()
	}
	return w.nextAllAncestors()
}

func (w *LogWalker) nextFirstParent() (*LogEntry, error) {
	if w.next == "" {
		return nil, io.EOF
	}
	c, err := w.repo.Store.ReadCommit(w.next)
	if err != nil {
		return nil, fmt.Errorf("log: read %s: %w", w.next, err)
	}
	entry := &LogEntry{Hash: w.next, Commit: c}

	w.next = ""
	if len(c.Parents) > 0 {
		w.next = c.Parents[0]
	}
	return entry, nil
}

func (w *LogWalker) nextAllAncestors() (*LogEntry, error) {
	if w.frontier.Len() == 0 {
		return nil, io.EOF
	}
	top := heap.Pop(&w.frontier).(heapEntry)

	for _, p := range top.commit.Parents {
		if w.visited[p] {
			continue
		}
		w.visited[p] = true
		pc, err := w.repo.Store.ReadCommit(p)
		if err != nil {
			return nil, fmt.Errorf("log: read parent %s: %w", p, err)
		}
		heap.Push(&w.frontier, heapEntry{hash: p, commit: pc})
	}

	return &LogEntry{Hash: top.hash, Commit: top.commit}, nil
}

type heapEntry struct {
	hash   object.Hash
	commit *object.CommitObj
}

// commitHeap orders the frontier newest-first; equal timestamps fall back
// to hash order so the walk is fully deterministic.
type commitHeap []heapEntry

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	if h[i].commit.Timestamp != h[j].commit.Timestamp {
		return h[i].commit.Timestamp > h[j].commit.Timestamp
	}
	return h[i].hash < h[j].hash
}

func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) { *h = append(*h, x.(heapEntry)) }

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
