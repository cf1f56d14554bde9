package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map. Expired sessions are
// dropped lazily on Get and eagerly by the sweep loop.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given idle timeout.
// A non-positive timeout disables expiry.
func NewMemoryStore(idleTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, customerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[customerID]
	if !ok {
		return nil, nil
	}
	if m.expired(s) {
		delete(m.sessions, customerID)
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *MemoryStore) Put(_ context.Context, customerID string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *s
	copied.UpdatedAt = m.now()
	m.sessions[customerID] = &copied
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, customerID)
	return nil
}

// Sweep removes every expired session and reports how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps expired sessions on the given interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
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

func (m *MemoryStore) expired(s *Session) bool {
	if m.idleTimeout <= 0 {
		return false
	}
	return m.now().Sub(s.UpdatedAt) > m.idleTimeout
}
