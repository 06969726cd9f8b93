package usedset

import (
	"context"
	"sync"
)

// MemoryStore keeps per-session usage in process memory. It is lost on
// restart and not shared across instances.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[int]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[int]struct{}),
	}
}

func (m *MemoryStore) Used(_ context.Context, sessionID string) (map[int]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int]struct{}, len(m.sessions[sessionID]))
	for idx := range m.sessions[sessionID] {
		out[idx] = struct{}{}
	}
	return out, nil
}

func (m *MemoryStore) Add(_ context.Context, sessionID string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = make(map[int]struct{})
		m.sessions[sessionID] = s
	}
	s[index] = struct{}{}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
