package analysis

import (
	"crypto/md5"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of analyses kept in memory.
const DefaultCacheSize = 1000

// CacheStats describes cache usage.
type CacheStats struct {
	Size    int     `json:"cache_size"`
	MaxSize int     `json:"max_cache_size"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is a bounded LRU of analyses keyed by text hash.
type Cache struct {
	lru    *lru.Cache[string, Analysis]
	size   int
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache creates a cache holding up to size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	l, err := lru.New[string, Analysis](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, size: size}, nil
}

// HashText returns the cache key for text.
func HashText(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the cached analysis for key.
func (c *Cache) Get(key string) (Analysis, bool) {
	a, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return Analysis{}, false
	}
	c.hits.Add(1)
	return a.clone(), true
}

// Add stores a copy of a.
func (c *Cache) Add(key string, a Analysis) {
	c.lru.Add(key, a.clone())
}

// Purge empties the cache and resets the counters. It returns the number of
// entries dropped.
func (c *Cache) Purge() int {
	n := c.lru.Len()
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	return n
}

// Stats returns current usage.
func (c *Cache) Stats() CacheStats {
	s := CacheStats{
		Size:    c.lru.Len(),
		MaxSize: c.size,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
