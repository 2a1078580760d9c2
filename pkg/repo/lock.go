package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockRetryDelay = 5 * time.Millisecond
	lockWaitLimit  = 2 * time.Second
)

// lockExclusive acquires the single repository lock that serializes
// mutating operations. Branch pointer, HEAD, and staging updates all happen
// under it, so another process can never observe a half-moved repository.
// Acquisition retries briefly, then surfaces ErrRepositoryLocked instead of
// blocking indefinitely.
//
// The returned release function is safe to call exactly once, typically
// via defer.
func (r *Repo) lockExclusive() (func(), error) {
	lockPath := filepath.Join(r.GritDir, "lock")
	deadline := time.Now().Add(lockWaitLimit)

	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("acquire repository lock: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire repository lock %q: %w", lockPath, ErrRepositoryLocked)
		}
		time.Sleep(lockRetryDelay)
	}
}
