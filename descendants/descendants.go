// Package descendants keeps the ordered set of navigable children a composite
// widget owns. Children register and deregister as they mount and unmount, possibly
// from different goroutines, and the owner reads consistent snapshots.
package descendants

import (
	"slices"
	"sync"
)

type entry[K comparable, T any] struct {
	key      K
	item     T
	position int
}

// Registry is an ordered collection of items keyed by identity.
type Registry[K comparable, T any] struct {
	mu      sync.RWMutex
	entries []entry[K, T]
}

// New returns an empty registry.
func New[K comparable, T any]() *Registry[K, T] {
	return &Registry[K, T]{}
}

// Register adds item at position, or moves and replaces it if key is already
// registered. Items with equal positions keep registration order.
func (r *Registry[K, T]) Register(key K, item T, position int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = slices.DeleteFunc(r.entries, func(e entry[K, T]) bool { return e.key == key })

	at, _ := slices.BinarySearchFunc(r.entries, position, func(e entry[K, T], p int) int {
		if e.position <= p {
			return -1
		}

		return 1
	})

	r.entries = slices.Insert(r.entries, at, entry[K, T]{key: key, item: item, position: position})
}

// Deregister removes key and reports whether it was present.
func (r *Registry[K, T]) Deregister(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e entry[K, T]) bool { return e.key == key })

	return len(r.entries) != before
}

// Len returns the number of registered items.
func (r *Registry[K, T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Items returns the items in order.
func (r *Registry[K, T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]T, len(r.entries))
	for i, e := range r.entries {
		items[i] = e.item
	}

	return items
}

// Keys returns the keys in order.
func (r *Registry[K, T]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}

	return keys
}

// IndexOf returns the current index of key, or -1.
func (r *Registry[K, T]) IndexOf(key K) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.IndexFunc(r.entries, func(e entry[K, T]) bool { return e.key == key })
}

// At returns the item at index i.
func (r *Registry[K, T]) At(i int) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.entries) {
		var zero T

		return zero, false
	}

	return r.entries[i].item, true
}

// Reselect keeps a selection stable across a change to the item list. The
// previously selected key wins if it is still present. Otherwise the previous index
// is kept, clamped to the new last item. An empty list has no selection.
func Reselect[K comparable](prevKey K, prevIndex int, keys []K) int {
	if len(keys) == 0 {
		return -1
	}

	if i := slices.Index(keys, prevKey); i >= 0 && prevIndex >= 0 {
		return i
	}

	if prevIndex > len(keys)-1 {
		return len(keys) - 1
	}

	return prevIndex
}
