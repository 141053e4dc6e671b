// Package sessioncache keeps viewers already resolved for an access token so
// that not every request costs an identity round trip.
package sessioncache

import (
	"context"
	"sync"
	"time"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/ports"
)

type entry struct {
	user      entities.User
	expiresAt time.Time
}

// Memory is an in-process ports.SessionCache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, token string) (*entities.User, error) {
	m.mu.RLock()
	e, ok := m.entries[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ports.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, token)
		m.mu.Unlock()
		return nil, ports.ErrCacheMiss
	}

	user := e.user
	return &user, nil
}

// Set stores user under token. A zero ttl never expires.
func (m *Memory) Set(_ context.Context, token string, user *entities.User, ttl time.Duration) error {
	e := entry{user: *user}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[token] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.entries, token)
	m.mu.Unlock()
	return nil
}
