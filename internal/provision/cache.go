// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// CacheFileName is the name of the resolution cache inside the cache dir.
	CacheFileName = "resolutions.toml"

	cacheVersion = 1
	// defaultMaxEntries bounds the number of environments kept; the least
	// recently updated are dropped first.
	defaultMaxEntries = 64
)

type (
	// Cache persists resolutions across processes, keyed by environment key.
	// It is advisory: every entry is revalidated before use, and callers
	// treat its errors as warnings.
	Cache struct {
		dir        string
		maxEntries int
		now        func() time.Time
		// mu serializes access within the process when no file lock is
		// available on the platform.
		mu sync.Mutex
	}

	cacheFile struct {
		Version      int                   `toml:"version"`
		Environments map[string]cacheEntry `toml:"environments"`
	}

	cacheEntry struct {
		UpdatedAt   time.Time         `toml:"updated_at"`
		Resolutions map[string]string `toml:"resolutions"`
	}
)

// NewCache returns a cache stored in dir. The directory is created on the
// first Store.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, maxEntries: defaultMaxEntries, now: time.Now}
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return filepath.Join(c.dir, CacheFileName)
}

// Load returns the cached resolutions for key, mapping canonical dependency
// identifiers to locations. A missing file or entry is not an error.
func (c *Cache) Load(key string) (map[string]string, bool, error) {
	if !c.exists() {
		return nil, false, nil
	}
	release, err := c.lock()
	if err != nil {
		return nil, false, err
	}
	defer release()

	f, err := c.read()
	if err != nil {
		return nil, false, err
	}
	entry, ok := f.Environments[key]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(entry.Resolutions), true, nil
}

// Store records the resolutions for key, replacing any previous entry.
func (c *Cache) Store(key string, resolutions map[string]string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	release, err := c.lock()
	if err != nil {
		return err
	}
	defer release()

	f, err := c.read()
	if err != nil {
		// An unreadable cache is rebuilt from scratch.
		f = &cacheFile{}
	}
	if f.Environments == nil {
		f.Environments = make(map[string]cacheEntry)
	}
	f.Version = cacheVersion
	f.Environments[key] = cacheEntry{UpdatedAt: c.now().UTC(), Resolutions: maps.Clone(resolutions)}
	c.prune(f)
	return c.write(f)
}

// Clear removes the cache file.
func (c *Cache) Clear() error {
	if !c.exists() {
		return nil
	}
	release, err := c.lock()
	if err != nil {
		return err
	}
	defer release()

	if err := os.Remove(c.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache: %w", err)
	}
	return nil
}

// exists reports whether the cache dir has been created. The lock file
// lives inside it, so nothing is locked before the first Store.
func (c *Cache) exists() bool {
	info, err := os.Stat(c.dir)
	return err == nil && info.IsDir()
}

func (c *Cache) read() (*cacheFile, error) {
	data, err := os.ReadFile(c.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return &cacheFile{Version: cacheVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	var f cacheFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w", c.Path(), err)
	}
	if f.Version != cacheVersion {
		return &cacheFile{Version: cacheVersion}, nil
	}
	return &f, nil
}

// write replaces the cache file atomically.
func (c *Cache) write(f *cacheFile) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, CacheFileName+".*")
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmpName, c.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (c *Cache) prune(f *cacheFile) {
	if c.maxEntries <= 0 || len(f.Environments) <= c.maxEntries {
		return
	}
	keys := slices.SortedFunc(maps.Keys(f.Environments), func(a, b string) int {
		return f.Environments[b].UpdatedAt.Compare(f.Environments[a].UpdatedAt)
	})
	for _, k := range keys[c.maxEntries:] {
		delete(f.Environments, k)
	}
}

// lock takes the cross-process file lock, or the in-process mutex where
// flock is unavailable.
func (c *Cache) lock() (func(), error) {
	l, err := acquireCacheLock(c.dir)
	if err == nil {
		return l.Release, nil
	}
	if !errors.Is(err, errFlockUnavailable) {
		return nil, err
	}
	c.mu.Lock()
	return c.mu.Unlock, nil
}
