// SPDX-License-Identifier: MPL-2.0

//go:build linux

package provision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockFileName sits next to the cache file. An orphaned lock file is
// harmless: the kernel drops the flock when the descriptor closes.
const lockFileName = ".resolutions.lock"

// errFlockUnavailable mirrors cache_lock_other.go; it is never returned here.
var errFlockUnavailable = errors.New("flock not available on this platform")

// cacheLock is an exclusive flock serializing cache access between envrun
// processes.
type cacheLock struct {
	file *os.File
}

// acquireCacheLock blocks until the lock in dir is held. dir must exist.
func acquireCacheLock(dir string) (*cacheLock, error) {
	lockPath := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}
	return &cacheLock{file: f}, nil
}

// Release unlocks and closes the lock file. Later calls are no-ops.
func (l *cacheLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
