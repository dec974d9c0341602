package embedding

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache(10, time.Hour)

	vec := []float32{0.1, 0.2, 0.3}
	c.Put("hello", vec)

	got, ok := c.Get("hello")
	require.True(t, ok)
	assert.Equal(t, vec, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewCache(10, time.Hour)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Put("hello", []float32{1})

	_, ok := c.Get("hello")
	assert.True(t, ok)

	current = current.Add(time.Hour + time.Second)
	_, ok = c.Get("hello")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheEvictsOldestInserted(t *testing.T) {
	c := NewCache(3, time.Hour)

	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Put("c", []float32{3})
	c.Put("d", []float32{4})

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")

	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q should survive", key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCacheRewriteKeepsQueuePosition(t *testing.T) {
	c := NewCache(2, time.Hour)

	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Put("a", []float32{9}) // rewrite, no eviction
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{9}, got)

	// "a" is still the oldest insertion, so it goes first.
	c.Put("c", []float32{3})
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Put("a", []float32{1})
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(100, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%50)
				c.Put(key, []float32{float32(n)})
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}
