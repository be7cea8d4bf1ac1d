package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// defaultCacheSize bounds the number of rendered messages kept
const defaultCacheSize = 256

// Cache keeps rendered markdown so scrolling and resizing do not re-run
// glamour for every message
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	maxSize int
	// lru tracks access order, least recent first
	lru []string
}

// NewCache creates a cache holding at most maxSize entries
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	return &Cache{
		entries: make(map[string]string),
		maxSize: maxSize,
		lru:     make([]string, 0, maxSize),
	}
}

// Key derives a cache key from the content and rendering parameters
func (c *Cache) Key(params ...any) string {
	h := sha256.New()
	for _, param := range params {
		fmt.Fprintf(h, "%v\x00", param)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached rendering
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.entries[key]
	if ok {
		c.touch(key)
	}
	return content, ok
}

// Set stores a rendering, evicting the least recently used one when full
func (c *Cache) Set(key, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize && len(c.lru) > 0 {
		delete(c.entries, c.lru[0])
		c.lru = c.lru[1:]
	}
	c.entries[key] = content
	c.touch(key)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.lru = c.lru[:0]
}

func (c *Cache) touch(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			break
		}
	}
	c.lru = append(c.lru, key)
}
