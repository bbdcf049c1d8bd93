package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLock is a process-local Locker with the same TTL semantics as the
// redis lock. Used in tests and single-node development.
type MemoryLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]time.Time)}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expires, ok := m.held[key]; ok && time.Now().Before(expires) {
		return false, nil
	}

	m.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, key)
	return nil
}

func (m *MemoryLock) Close() error { return nil }
