// Package memory keeps provider sessions in process memory. It backs local
// development when no Redis is configured.
package memory

import (
	"context"
	"sync"

	"github.com/zaplanje/price/internal/core/domain"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

// Load returns nil when key has no session.
func (s *SessionStore) Load(_ context.Context, key string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Save(_ context.Context, key string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = *sess
	return nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}
