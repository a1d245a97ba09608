// Package lockedfile provides a cross-process exclusive lock around a
// read-modify-write of a single JSON file. Multiple independent processes
// may share the same file; there is no long-lived server owning it.
package lockedfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/wayfarerlabs/tripmind/agent/contract"
)

const (
	// DefaultTimeout bounds the wait for the lock marker.
	DefaultTimeout = 10 * time.Second

	lockRetryInterval = 25 * time.Millisecond
	lockSuffix        = ".lock"
	tempSuffix        = ".tmp"
)

var emptyObject = []byte("{}")

// Mutator receives the current persisted content and returns the new
// payload to write. Returning nil means "no write"; the lock is released
// without touching the file.
type Mutator func(current []byte) ([]byte, error)

// WithLock acquires an exclusive lock on a sibling marker of path, waiting
// up to timeout, ensures the target file exists (seeding an empty JSON
// object), then runs fn inside the critical section. A non-nil payload is
// written to a temporary sibling and atomically renamed over the target,
// so concurrent readers never observe a partial write.
func WithLock(ctx context.Context, path string, timeout time.Duration, fn Mutator) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if err := ensureFile(path); err != nil {
		return err
	}

	lock := flock.New(path + lockSuffix)
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil || !locked {
		return fmt.Errorf("%w: %s (waited %s)", contract.ErrLockTimeout, path, timeout)
	}
	defer lock.Unlock() //nolint:errcheck

	current, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	tmp := path + tempSuffix
	if err := os.WriteFile(tmp, next, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, emptyObject, 0o644); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	return nil
}
