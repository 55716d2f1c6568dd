package state

import (
	"context"
	"sync"
)

// MemoryStore is an in-process alert state store for single-node runs
// and unit tests. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, patientID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[patientID], nil
}

func (s *MemoryStore) Set(_ context.Context, patientID, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[patientID] = state
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, patientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, patientID)
	return nil
}
