// Package lru_cache implements a lru cache data structure
package lru_cache

import (
	"errors"
	"fmt"

	"lrukv/internal/cache/lru_cache/list"
)

// ErrInvalidCapacity is returned when a cache is created with non-positive capacity
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// maxPrealloc bounds the up-front allocation for large caches, the rest grows on demand
const maxPrealloc = 1 << 12

// An Option configures an LRUCache at creation
type Option[K comparable, V any] func(*LRUCache[K, V])

// WithOnEvict sets a callback that is called with every evicted pair.
// It runs inside Put and must not call the cache
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRUCache[K, V]) {
		c.onEvict = fn
	}
}

// A LRUCache is a fixed capacity cache with least recently used eviction.
// It is not safe for concurrent use, see SyncLRUCache.
type LRUCache[K comparable, V any] struct {
	lruList  *list.LRUList[K, V]
	cache    map[K]list.Handle
	capacity int
	onEvict  func(K, V)
}

// NewLRUCache create empty cache. It should be created only using this command
func NewLRUCache[K comparable, V any](capacity int, opts ...Option[K, V]) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w, got: %d", ErrInvalidCapacity, capacity)
	}
	hint := min(capacity+1, maxPrealloc)
	c := &LRUCache[K, V]{
		lruList:  list.NewLRUList[K, V](hint),
		cache:    make(map[K]list.Handle, hint),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Put adds a key-value pair or updates an existing one and moves it to front.
// Adding a new key to a full cache evicts the least recently used pair
func (c *LRUCache[K, V]) Put(key K, value V) {
	if h, ok := c.cache[key]; ok {
		_ = c.lruList.SetValue(h, value)
		_ = c.lruList.MoveToFront(h)
		return
	}

	c.cache[key] = c.lruList.PushFront(key, value)

	if c.lruList.Size() > c.capacity {
		c.evict()
	}
}

// Get return a value by key and moves this pair to front
func (c *LRUCache[K, V]) Get(key K) (value V, ok bool) {
	h, ok := c.cache[key]
	if !ok {
		return
	}
	_ = c.lruList.MoveToFront(h)
	value, _ = c.lruList.Value(h)
	return value, true
}

// Peek return a value by key without changing its recency
func (c *LRUCache[K, V]) Peek(key K) (value V, ok bool) {
	h, ok := c.cache[key]
	if !ok {
		return
	}
	value, _ = c.lruList.Value(h)
	return value, true
}

// Contains return if key is present in cache
func (c *LRUCache[K, V]) Contains(key K) bool {
	_, ok := c.cache[key]
	return ok
}

// Keys returns cached keys from the most to the least recently used
func (c *LRUCache[K, V]) Keys() []K {
	keys := make([]K, 0, c.lruList.Size())
	for h := c.lruList.Front(); h != list.Nil; h = c.lruList.Next(h) {
		key, _ := c.lruList.Key(h)
		keys = append(keys, key)
	}
	return keys
}

// Size returns how many elements are currently cashed
func (c *LRUCache[K, V]) Size() int {
	return len(c.cache)
}

// Capacity returns the maximum capacity of the cache
func (c *LRUCache[K, V]) Capacity() int {
	return c.capacity
}

// Empty returns if there are no elements in cache
func (c *LRUCache[K, V]) Empty() bool {
	return len(c.cache) == 0
}

// evict drops the least recently used pair from the list and the index
func (c *LRUCache[K, V]) evict() {
	key, value, err := c.lruList.PopBack()
	if err != nil {
		return
	}
	delete(c.cache, key)
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}
