// Package memory implements an in-memory ObjectStore. It backs dry-run
// syncs and the pipeline tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/HemeraProtocol/seismic-verify/pkg/store"
)

type object struct {
	data        []byte
	contentType string
}

// Store is a mutex-guarded map of key to object bytes.
type Store struct {
	mu       sync.RWMutex
	objects  map[string]object
	putCalls int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string]object)}
}

// Exists implements store.ObjectStore.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Get implements store.ObjectStore.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, store.ErrNotFound)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

// Put implements store.ObjectStore.
func (s *Store) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = object{data: stored, contentType: contentType}
	s.putCalls++
	return nil
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContentType returns the content type recorded for key, or "".
func (s *Store) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key].contentType
}

// PutCalls returns how many writes the store has received. Tests use it to
// assert that an idempotent re-run performs no additional mutations.
func (s *Store) PutCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.putCalls
}

var _ store.ObjectStore = (*Store)(nil)
