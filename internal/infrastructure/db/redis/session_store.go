package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zaplanje/price/internal/core/domain"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionStore keeps provider sessions in Redis so that a browser client
// stays signed in across restarts and replicas.
// Key format: session:<client_id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps client. Stored sessions expire after ttl without
// use; defaultSessionTTL applies when ttl <= 0.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Load returns nil when key has no session.
func (s *SessionStore) Load(ctx context.Context, key string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, key string, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("session del: %w", err)
	}
	return nil
}

func (s *SessionStore) key(clientID string) string {
	return "session:" + clientID
}
