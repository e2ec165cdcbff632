package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-access/pkg/types"
)

// MemoryStore keeps entries in a map. It is meant for tests and for hosts
// that persist state elsewhere.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore provisions an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

var (
	_ types.Store      = (*MemoryStore)(nil)
	_ types.Transactor = (*MemoryStore)(nil)
)

func (s *MemoryStore) Has(_ context.Context, key types.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key.String()]
	return ok, nil
}

func (s *MemoryStore) Get(_ context.Context, key types.Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key.String()]
	if !ok {
		return nil, types.ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

func (s *MemoryStore) Set(_ context.Context, key types.Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = cloneBytes(value)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key types.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key.String())
	return nil
}

// RunInTx holds the write lock for the whole of fn, so transactions are
// serialized against each other and against direct writes. fn must only use
// the Store it is handed.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx types.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := newOverlay(memoryView{entries: s.entries})
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, w := range tx.changes() {
		if w.deleted {
			delete(s.entries, w.key.String())
			continue
		}
		s.entries[w.key.String()] = w.value
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// memoryView reads the map without locking; RunInTx already holds the lock.
type memoryView struct {
	entries map[string][]byte
}

func (v memoryView) Has(_ context.Context, key types.Key) (bool, error) {
	_, ok := v.entries[key.String()]
	return ok, nil
}

func (v memoryView) Get(_ context.Context, key types.Key) ([]byte, error) {
	value, ok := v.entries[key.String()]
	if !ok {
		return nil, types.ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

func (v memoryView) Set(context.Context, types.Key, []byte) error {
	return errReadOnlyView
}

func (v memoryView) Remove(context.Context, types.Key) error {
	return errReadOnlyView
}
