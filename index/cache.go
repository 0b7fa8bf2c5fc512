package index

import (
	"container/list"
	"sync"

	"github.com/flowsight/flowsight/model"
)

// TreeCache is a fixed-capacity, least-recently-used cache from content
// hash to a parsed file's ParseResult. Keying by content hash rather than
// path means two files with identical content (common in kernel driver
// boilerplate) parse once and share the result; no third-party LRU
// implementation appears anywhere in the retrieved corpus, so this uses
// container/list the way an idiomatic hand-rolled LRU normally would.
type TreeCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element
}

type cacheEntry struct {
	key    uint64
	result *model.ParseResult
}

// NewTreeCache returns a cache holding at most capacity entries (clamped
// to at least 1).
func NewTreeCache(capacity int) *TreeCache {
	if capacity < 1 {
		capacity = 1
	}
	return &TreeCache{
		capacity: capacity,
		ll:       list.New(),
		items:    map[uint64]*list.Element{},
	}
}

// Get returns the cached ParseResult for hash, if any, promoting it to
// most-recently-used.
func (c *TreeCache) Get(hash uint64) (*model.ParseResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[hash]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

// Put inserts or updates the cached result for hash, evicting the least
// recently used entry if the cache is full.
func (c *TreeCache) Put(hash uint64, result *model.ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[hash]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).result = result
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: hash, result: result})
	c.items[hash] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of entries currently cached.
func (c *TreeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
