package symbols

import (
	"context"
	"sync"
)

// Store holds the current index and swaps it atomically on refresh, so
// request handlers always read a complete snapshot.
type Store struct {
	loader *Loader

	mu  sync.RWMutex
	idx *Index
}

// NewStore creates a store seeded with an initial load.
func NewStore(ctx context.Context, loader *Loader) *Store {
	return &Store{
		loader: loader,
		idx:    loader.Load(ctx),
	}
}

// NewStoreWithIndex creates a store around a prebuilt index. 테스트용.
func NewStoreWithIndex(idx *Index) *Store {
	return &Store{idx: idx}
}

// Current returns the active index snapshot.
func (s *Store) Current() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Reload re-downloads the master files and swaps in the fresh index.
// An empty reload keeps the previous snapshot.
func (s *Store) Reload(ctx context.Context) {
	if s.loader == nil {
		return
	}

	fresh := s.loader.Load(ctx)
	if fresh.Size() == 0 {
		return
	}

	s.mu.Lock()
	s.idx = fresh
	s.mu.Unlock()
}
