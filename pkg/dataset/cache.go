package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"github.com/mlgoperf/ir-feature-query/pkg/features"
)

// RowCache is a disk-persisted cache of featurized rows keyed by source
// path and content hash. A file whose text has not changed since the last
// run is served from the cache instead of being re-analyzed. Safe for
// concurrent use by pipeline workers.
type RowCache struct {
	mu      sync.RWMutex
	path    string
	entries map[string][]features.Row
	dirty   bool
}

// CacheKey builds the cache key for one input file: its path plus the
// xxh3 hash of its content plus the aggregation mode, so function-level
// and file-level rows never collide.
func CacheKey(path string, content []byte, perFile bool) string {
	mode := "func"
	if perFile {
		mode = "file"
	}
	return fmt.Sprintf("%s:%016x:%s", path, xxh3.Hash(content), mode)
}

// OpenRowCache loads the cache stored at path. A missing file yields an
// empty cache; a corrupt one is discarded and started fresh, since the
// cache is purely an optimization.
func OpenRowCache(path string) (*RowCache, error) {
	c := &RowCache{
		path:    path,
		entries: make(map[string][]features.Row),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}

	if err := msgpack.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string][]features.Row)
	}
	return c, nil
}

// Get returns the cached rows for key.
func (c *RowCache) Get(key string) ([]features.Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows, ok := c.entries[key]
	return rows, ok
}

// Put stores rows under key.
func (c *RowCache) Put(key string, rows []features.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rows
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *RowCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Save persists the cache back to its path when any entry changed.
func (c *RowCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := msgpack.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("writing cache %s: %w", c.path, err)
	}

	c.dirty = false
	return nil
}
