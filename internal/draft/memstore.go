package draft

import (
	"context"
	"sync"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string][]byte)}
}

// Save upserts the draft under key.
func (s *MemoryStore) Save(_ context.Context, key string, d model.Draft) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = data
	return nil
}

// Load retrieves the draft under key.
func (s *MemoryStore) Load(_ context.Context, key string) (model.Draft, bool, error) {
	s.mu.RLock()
	data, ok := s.drafts[key]
	s.mu.RUnlock()

	if !ok {
		return model.Draft{}, false, nil
	}
	d, err := Decode(data)
	if err != nil {
		return model.Draft{}, false, err
	}
	return d, true, nil
}

// Clear removes the draft under key.
func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

// Len returns the number of stored drafts, for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
