// Package list implements the recency sequence of an LRU cache as an arena-backed doubly linked list
package list

import (
	"fmt"
)

// A LRUListError is a custom error type for list
type LRUListError struct {
	message string
}

func (e *LRUListError) Error() string {
	return fmt.Sprintf("lru list error: %v", e.message)
}

var ErrSentinel = &LRUListError{"can't perform operations with a sentinel"}
var ErrNotInList = &LRUListError{"handle should point to a live element of this list"}

// A Handle is a stable reference to a node of an LRUList. It never changes while the node is in the list
type Handle int32

const (
	// Nil is returned where no node exists
	Nil Handle = -1

	head Handle = 0
	tail Handle = 1
)

type node[K comparable, V any] struct {
	prev, next Handle
	live       bool
	key        K
	value      V
}

// A LRUList keeps nodes ordered from the most recently used (front) to the least recently used (back).
// Nodes live in a slice and link to each other by Handle. Released slots are reused.
// It is not safe for concurrent use.
type LRUList[K comparable, V any] struct {
	nodes []node[K, V]
	free  []Handle
	len   int
}

// NewLRUList creates an empty LRUList with room for sizeHint nodes. It should be created only using this command
func NewLRUList[K comparable, V any](sizeHint int) *LRUList[K, V] {
	if sizeHint < 0 {
		sizeHint = 0
	}
	l := &LRUList[K, V]{nodes: make([]node[K, V], 2, sizeHint+2)}
	l.nodes[head] = node[K, V]{prev: Nil, next: tail}
	l.nodes[tail] = node[K, V]{prev: head, next: Nil}
	return l
}

// Front returns the handle of the most recently used node or Nil if the list is empty
func (l *LRUList[K, V]) Front() Handle {
	if h := l.nodes[head].next; h != tail {
		return h
	}
	return Nil
}

// Back returns the handle of the least recently used node or Nil if the list is empty
func (l *LRUList[K, V]) Back() Handle {
	if h := l.nodes[tail].prev; h != head {
		return h
	}
	return Nil
}

// Next returns the node after h (towards the back) or Nil if there is none
func (l *LRUList[K, V]) Next(h Handle) Handle {
	if l.check(h) != nil {
		return Nil
	}
	if n := l.nodes[h].next; n != tail {
		return n
	}
	return Nil
}

// Prev returns the node before h (towards the front) or Nil if there is none
func (l *LRUList[K, V]) Prev(h Handle) Handle {
	if l.check(h) != nil {
		return Nil
	}
	if p := l.nodes[h].prev; p != head {
		return p
	}
	return Nil
}

// Key returns the key stored in h
func (l *LRUList[K, V]) Key(h Handle) (key K, err error) {
	if err = l.check(h); err != nil {
		return
	}
	return l.nodes[h].key, nil
}

// Value returns the value stored in h
func (l *LRUList[K, V]) Value(h Handle) (value V, err error) {
	if err = l.check(h); err != nil {
		return
	}
	return l.nodes[h].value, nil
}

// SetValue replaces the value stored in h without changing its position
func (l *LRUList[K, V]) SetValue(h Handle, value V) error {
	if err := l.check(h); err != nil {
		return err
	}
	l.nodes[h].value = value
	return nil
}

// PushFront stores a key-value pair in a new node at the front and returns its handle
func (l *LRUList[K, V]) PushFront(key K, value V) Handle {
	h := l.alloc(key, value)
	l.insertAfter(h, head)
	l.len += 1
	return h
}

// MoveToFront moves the node pointed by h to the front of the list
func (l *LRUList[K, V]) MoveToFront(h Handle) error {
	if err := l.check(h); err != nil {
		return err
	}
	if l.nodes[head].next == h {
		return nil
	}
	l.detach(h)
	l.insertAfter(h, head)
	return nil
}

// Remove unlinks the node pointed by h, releases its slot and returns what it held
func (l *LRUList[K, V]) Remove(h Handle) (key K, value V, err error) {
	if err = l.check(h); err != nil {
		return
	}
	l.detach(h)

	n := &l.nodes[h]
	key, value = n.key, n.value
	*n = node[K, V]{prev: Nil, next: Nil}
	l.free = append(l.free, h)
	l.len -= 1

	return key, value, nil
}

// PopBack removes the least recently used node and returns what it held
func (l *LRUList[K, V]) PopBack() (K, V, error) {
	h := l.Back()
	if h == Nil {
		var (
			key   K
			value V
		)
		return key, value, ErrNotInList
	}
	return l.Remove(h)
}

// Size returns the amount of elements that it currently holds
func (l *LRUList[K, V]) Size() int {
	return l.len
}

// Empty return if the list has no elements
func (l *LRUList[K, V]) Empty() bool {
	return l.len == 0
}

// check reports whether h points to a live non-sentinel node
func (l *LRUList[K, V]) check(h Handle) error {
	if h == head || h == tail {
		return ErrSentinel
	}
	if h < 0 || int(h) >= len(l.nodes) || !l.nodes[h].live {
		return ErrNotInList
	}
	return nil
}

// alloc takes a released slot if there is one, otherwise grows the arena
func (l *LRUList[K, V]) alloc(key K, value V) Handle {
	n := node[K, V]{prev: Nil, next: Nil, live: true, key: key, value: value}
	if last := len(l.free) - 1; last >= 0 {
		h := l.free[last]
		l.free = l.free[:last]
		l.nodes[h] = n
		return h
	}
	l.nodes = append(l.nodes, n)
	return Handle(len(l.nodes) - 1)
}

// detach links the neighbours of h to each other. h must be linked
func (l *LRUList[K, V]) detach(h Handle) {
	p, n := l.nodes[h].prev, l.nodes[h].next
	l.nodes[p].next = n
	l.nodes[n].prev = p
}

// insertAfter links h between at and its successor. h must be detached
func (l *LRUList[K, V]) insertAfter(h, at Handle) {
	next := l.nodes[at].next
	l.nodes[h].prev = at
	l.nodes[h].next = next
	l.nodes[next].prev = h
	l.nodes[at].next = h
}
