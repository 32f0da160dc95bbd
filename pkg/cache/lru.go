package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRU is a typed, thread-safe least-recently-used cache.
// When full, adding a new key evicts the least recently used one.
type LRU[K comparable, V any] struct {
	c *lru.Cache
}

// NewLRU returns a cache holding at most size entries.
// Panics if size is not positive.
func NewLRU[K comparable, V any](size int) *LRU[K, V] {
	if size <= 0 {
		panic("cache: LRU size must be positive")
	}
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &LRU[K, V]{c: c}
}

// Put adds or replaces the value for key. Reports whether an entry was evicted.
func (l *LRU[K, V]) Put(key K, value V) bool {
	return l.c.Add(key, value)
}

// Contains reports whether key is cached without updating its recency.
func (l *LRU[K, V]) Contains(key K) bool {
	return l.c.Contains(key)
}

// Remove drops key from the cache.
func (l *LRU[K, V]) Remove(key K) {
	l.c.Remove(key)
}
