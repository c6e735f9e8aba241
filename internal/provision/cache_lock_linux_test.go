// SPDX-License-Identifier: MPL-2.0

//go:build linux

package provision

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireCacheLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := acquireCacheLock(dir)
	if err != nil {
		t.Fatalf("acquireCacheLock() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); err != nil {
		t.Errorf("lock file not created in the cache dir: %v", err)
	}
	l.Release()
	l.Release()

	again, err := acquireCacheLock(dir)
	if err != nil {
		t.Fatalf("acquireCacheLock() after release: %v", err)
	}
	again.Release()
}

func TestAcquireCacheLockMissingDir(t *testing.T) {
	t.Parallel()

	if _, err := acquireCacheLock(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("acquireCacheLock() on a missing dir succeeded")
	}
}
