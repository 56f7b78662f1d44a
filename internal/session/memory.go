package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	mu sync.Mutex
	s  *Session
}

// MemoryStore is a thread-safe in-memory session registry with TTL eviction.
// Each session has its own lock so state updates on one paper never wait on
// another.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &entry{s: s.Clone()}
	return nil
}

func (m *MemoryStore) lookup(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) UpdateState(_ context.Context, id string, fn func(*Session, *State) error) (State, error) {
	e, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.s.State.Clone()
	if err := fn(e.s, &st); err != nil {
		return State{}, err
	}
	e.s.State = st
	e.s.UpdatedAt = time.Now().UTC()
	return st.Clone(), nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns their
// IDs so callers can release associated files. A zero TTL keeps everything.
func (m *MemoryStore) Cleanup(_ context.Context) ([]string, error) {
	if m.ttl <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []string
	now := time.Now()
	for id, e := range m.sessions {
		e.mu.Lock()
		idle := now.Sub(e.s.UpdatedAt)
		e.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (m *MemoryStore) Close() error { return nil }
