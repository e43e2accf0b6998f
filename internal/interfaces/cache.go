package interfaces

// A Cache is a bounded key-value cache. Get and Put refresh recency, Contains doesn't
type Cache[K comparable, V any] interface {
	Put(key K, value V)
	Get(key K) (V, bool)
	Contains(key K) bool
	Keys() []K
	Size() int
	Capacity() int
	Empty() bool
}
