package cache

import (
	"sync"

	gitplumbing "github.com/go-git/go-git/v5/plumbing"
	"github.com/golang/groupcache/lru"

	"github.com/hyperast/go-hyperast/plumbing"
)

// HandleLRU is a Handles cache evicting the least recently used objects
// once MaxEntries objects are stored. It is safe for concurrent use.
type HandleLRU struct {
	MaxEntries int

	mu  sync.Mutex
	lru *lru.Cache

	hits, misses uint64
}

var _ Handles = (*HandleLRU)(nil)

// NewHandleLRU returns a HandleLRU holding at most maxEntries objects. A
// value lower than 1 uses DefaultMaxEntries.
func NewHandleLRU(maxEntries int) *HandleLRU {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}

	return &HandleLRU{MaxEntries: maxEntries}
}

// Put implements Handles. The slice is copied.
func (c *HandleLRU) Put(k gitplumbing.Hash, v []plumbing.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		c.lru = lru.New(c.MaxEntries)
	}

	c.lru.Add(k, append([]plumbing.Handle(nil), v...))
}

// Get implements Handles. The returned slice must not be modified.
func (c *HandleLRU) Get(k gitplumbing.Hash) ([]plumbing.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru != nil {
		if v, ok := c.lru.Get(k); ok {
			c.hits++
			return v.([]plumbing.Handle), true
		}
	}

	c.misses++
	return nil, false
}

// Clear implements Handles.
func (c *HandleLRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru != nil {
		c.lru.Clear()
	}
}

// Len returns the number of cached objects.
func (c *HandleLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return 0
	}

	return c.lru.Len()
}

// Stats returns the number of lookups that found, and did not find, an
// entry.
func (c *HandleLRU) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses
}
