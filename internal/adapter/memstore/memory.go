package memstore

import (
	"sync"

	"codeport/internal/domain"
)

// Path selects the in-memory store in place of a database file.
const Path = ":memory:"

// MemoryStore keeps responses for the lifetime of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	responses map[string]domain.CachedResponse
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		responses: make(map[string]domain.CachedResponse),
	}
}

func (s *MemoryStore) GetResponse(key string) (domain.CachedResponse, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.responses[key]
	return resp, ok, nil
}

func (s *MemoryStore) PutResponse(key string, resp domain.CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = resp
	return nil
}

func (s *MemoryStore) Stats() (domain.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CacheStats{Entries: len(s.responses)}, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = make(map[string]domain.CachedResponse)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
