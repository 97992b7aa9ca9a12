// Package flock provides an exclusive advisory lock on a sidecar file.
//
// The work-item store takes this lock around its write critical section:
//
//	l, err := flock.Acquire(ctx, storePath+".lock", 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer l.Release()
package flock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// Lock is a held exclusive lock.
type Lock struct {
	f *os.File
}

// Acquire opens path and polls for an exclusive lock until timeout.
// It returns ErrLockTimeout when another process keeps the lock.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) //#nosec G304 -- lock path derives from configured store path
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := tryLock(f.Fd()); err == nil {
			return &Lock{f: f}, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire %s: %w", path, dlerrors.ErrLockTimeout)
		}
		time.Sleep(constants.LockRetryInterval)
	}
}

// Release unlocks and closes the lock file. Safe on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := unlock(l.f.Fd())
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
