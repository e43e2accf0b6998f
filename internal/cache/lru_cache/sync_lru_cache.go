package lru_cache

import "sync"

// A SyncLRUCache is a thread-safe LRUCache. One mutex guards the index and the list for the whole call
type SyncLRUCache[K comparable, V any] struct {
	cache *LRUCache[K, V]
	mu    sync.Mutex
}

// NewSyncLRUCache create empty thread-safe cache
func NewSyncLRUCache[K comparable, V any](capacity int, opts ...Option[K, V]) (*SyncLRUCache[K, V], error) {
	c, err := NewLRUCache(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &SyncLRUCache[K, V]{cache: c}, nil
}

// Put adds or updates a key-value pair, might evict the least recently used pair
func (c *SyncLRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Put(key, value)
}

// Get return a value by key and moves this pair to front
func (c *SyncLRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Get(key)
}

// Peek return a value by key without changing its recency
func (c *SyncLRUCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Peek(key)
}

// Contains return if key is present in cache
func (c *SyncLRUCache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Contains(key)
}

// Keys returns cached keys from the most to the least recently used
func (c *SyncLRUCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Keys()
}

// Size returns how many elements are currently cashed
func (c *SyncLRUCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Size()
}

// Capacity returns the maximum capacity of the cache
func (c *SyncLRUCache[K, V]) Capacity() int {
	return c.cache.Capacity()
}

// Empty returns if there are no elements in cache
func (c *SyncLRUCache[K, V]) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Empty()
}
