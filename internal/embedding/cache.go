package embedding

import (
	"sync"
	"time"
)

type cacheEntry struct {
	vector     []float32
	insertedAt time.Time
}

// Cache memoizes text-to-vector lookups. Eviction is size-bound (the
// oldest-inserted entry goes first once capacity is reached) and
// time-bound (entries past their TTL are evicted lazily on read, never
// swept). Insertion-order eviction approximates LRU only when keys are
// not rewritten; that simplification is intentional.
//
// A single mutex guards both the map and the insertion queue: reads
// mutate on expiry, so a reader/writer lock would not be safe here.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	queue   []string // insertion order, oldest first
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type CacheStats struct {
	Size    int `json:"size"`
	MaxSize int `json:"maxSize"`
}

func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Cache{
		entries: make(map[string]cacheEntry, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached vector for text, evicting it first if it has
// outlived the TTL.
func (c *Cache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[text]
	if !ok {
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(entry.insertedAt) > c.ttl {
		delete(c.entries, text)
		c.dequeue(text)
		return nil, false
	}

	return entry.vector, true
}

// Put stores a vector, evicting the single oldest-inserted entry first
// when the cache is at capacity. Rewriting an existing key refreshes
// its timestamp but keeps its place in the eviction queue.
func (c *Cache) Put(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[text]; exists {
		c.entries[text] = cacheEntry{vector: vector, insertedAt: c.now()}
		return
	}

	if len(c.entries) >= c.maxSize && len(c.queue) > 0 {
		oldest := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.entries, oldest)
	}

	c.entries[text] = cacheEntry{vector: vector, insertedAt: c.now()}
	c.queue = append(c.queue, text)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry, c.maxSize)
	c.queue = nil
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Size: len(c.entries), MaxSize: c.maxSize}
}

// dequeue removes text from the insertion queue. Called with the lock held.
func (c *Cache) dequeue(text string) {
	for i, k := range c.queue {
		if k == text {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}
