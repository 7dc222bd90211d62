// Package pending provides the insertion-ordered identity set that tracks
// dispatched but unresolved operations.
package pending

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Set is a concurrency-safe set that remembers insertion order. Membership is
// keyed by value identity, so pointer elements are tracked independently even
// when they describe equal data.
type Set[T comparable] struct {
	mu    sync.Mutex
	items *orderedmap.OrderedMap[T, struct{}]
}

// New returns an empty set.
func New[T comparable]() *Set[T] {
	return &Set[T]{items: orderedmap.New[T, struct{}]()}
}

// Add inserts v and reports whether it was absent.
func (s *Set[T]) Add(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items.Get(v); ok {
		return false
	}
	s.items.Set(v, struct{}{})
	return true
}

// Remove deletes v and reports whether it was present.
func (s *Set[T]) Remove(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items.Delete(v)
	return ok
}

// Has reports membership.
func (s *Set[T]) Has(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items.Get(v)
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Len()
}

// Snapshot copies the members in insertion order. Later mutations do not
// affect the returned slice.
func (s *Set[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, s.items.Len())
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
