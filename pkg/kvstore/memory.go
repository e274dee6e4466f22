package kvstore

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Nothing expires.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if x, found := s.cache.Get(key); found {
		return clone(x.([]byte)), true, nil
	}
	return nil, false, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, clone(value), cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	x, found := s.cache.Get(key)
	if found {
		current = clone(x.([]byte))
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	s.cache.Set(key, clone(next), cache.NoExpiration)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
