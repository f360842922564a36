package typeexpr

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/errors"
)

// DefaultCacheSize bounds the shared translation cache.
const DefaultCacheSize = 4096

type cacheEntry struct {
	result *TypeExpr
	diags  []diag.Diagnostic
}

// Cache memoises translations across units and workers. Diagnostics raised
// by a translation are stored with it and replayed on every hit, so caching
// never hides a problem from the unit that has it.
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache creates a cache holding up to size translations.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, errors.Wrap(err, "create translation cache")
	}
	return &Cache{entries: entries}, nil
}

func (c *Cache) get(key string) (cacheEntry, bool) {
	entry, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return entry, ok
}

func (c *Cache) add(key string, entry cacheEntry) {
	c.entries.Add(key, entry)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached translations.
func (c *Cache) Len() int {
	return c.entries.Len()
}
