package memory

import (
	"context"
	"sync"

	"github.com/billkhata/api/internal/store"
)

type record struct {
	value   []byte
	version int64
}

// Store is an in-memory RecordStore for dev mode and tests. A RWMutex
// serializes writers, so CompareAndSet conflicts only occur between
// interleaved read-modify-write sequences, exactly the case the version
// check exists for.
type Store struct {
	mu   sync.RWMutex
	data map[string]record
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]record)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneBytes(rec.value), nil
}

func (s *Store) GetVersioned(_ context.Context, key string) ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	if !ok {
		return nil, 0, store.ErrNotFound
	}
	return cloneBytes(rec.value), rec.version, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.data[key]
	s.data[key] = record{value: cloneBytes(value), version: rec.version + 1}
	return nil
}

func (s *Store) CompareAndSet(_ context.Context, key string, value []byte, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[key]
	current := int64(0)
	if ok {
		current = rec.version
	}
	if current != version {
		return store.ErrVersionConflict
	}
	s.data[key] = record{value: cloneBytes(value), version: current + 1}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
