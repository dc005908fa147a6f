package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Sessions past their end (see
// State.Remaining) are treated as missing and removed on access.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
	maxAge   time.Duration
	now      func() time.Time
}

func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]State),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (m *MemoryStore) Upsert(_ context.Context, id string, state State) error {
	if id == "" {
		return fmt.Errorf("[session MemoryStore.Upsert] id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = state
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (State, error) {
	if id == "" {
		return State{}, ErrNotFound
	}

	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return State{}, ErrNotFound
	}

	if m.expired(state) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return State{}, ErrNotFound
	}
	return state, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, state := range m.sessions {
		if m.expired(state) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(state State) bool {
	_, alive := state.Remaining(m.now(), m.maxAge)
	return !alive
}
