package repo

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps a collection in process memory.
type MemoryStore[T any] struct {
	notifier
	collection string
	mu         sync.RWMutex
	items      []T
}

func NewMemoryStore[T any](collection string, seed ...T) *MemoryStore[T] {
	return &MemoryStore[T]{
		collection: collection,
		items:      slices.Clone(seed),
	}
}

func (s *MemoryStore[T]) Load(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, items []T) error {
	s.mu.Lock()
	s.items = slices.Clone(items)
	s.mu.Unlock()
	s.notify(s.collection)
	return nil
}

func (s *MemoryStore[T]) Append(_ context.Context, items ...T) error {
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
	s.notify(s.collection)
	return nil
}

// Clear empties the collection.
func (s *MemoryStore[T]) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.notify(s.collection)
}
