package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

// StoreLock serialises writers of one store file across kittrack
// processes. The lock lives next to the store as "<file>.lock".
type StoreLock struct {
	fl   *flock.Flock
	path string
}

func NewStoreLock(storePath string) (*StoreLock, error) {
	absPath, err := StorePath(storePath)
	if err != nil {
		return nil, fmt.Errorf("could not resolve store path: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &StoreLock{fl: flock.New(lockPath), path: lockPath}, nil
}

// Lock takes the lock, polling until ctx is done when another process
// holds it.
func (l *StoreLock) Lock(ctx context.Context) error {
	locked, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if locked {
		return nil
	}

	Log.Warnf("Another kittrack process is writing to %s, waiting for it to finish...", l.path)
	locked, err = l.fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", l.path)
	}
	return nil
}

func (l *StoreLock) Unlock() error {
	if err := l.fl.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// Do runs fn while holding the lock.
func (l *StoreLock) Do(ctx context.Context, fn func() error) error {
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer l.Unlock()
	return fn()
}

func (l *StoreLock) Path() string {
	return l.path
}

// StorePath makes storePath absolute. An empty path means
// ~/.config/kittrack/kittrack.sqlite.
func StorePath(storePath string) (string, error) {
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "kittrack", "kittrack.sqlite"), nil
	}
	return filepath.Abs(storePath)
}
