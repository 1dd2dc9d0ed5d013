// internal/domain/cart/session_store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore loads and saves browsing sessions
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// JSONStore is the subset of the Redis client the session store needs
type JSONStore interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Del(ctx context.Context, keys ...string) error
}

// RedisSessionStore keeps sessions as JSON documents with a sliding TTL
type RedisSessionStore struct {
	client JSONStore
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store over client
func NewRedisSessionStore(client JSONStore, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Load returns the stored session, or a fresh one when none exists
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session ID required")
	}

	var session Session
	err := s.client.GetJSON(ctx, sessionKey(id), &session)
	if errors.Is(err, redis.Nil) {
		return NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session.ID = id
	if session.Cart.Lines == nil {
		session.Cart.Lines = []Line{}
	}
	return &session, nil
}

// Save writes the session and restarts its TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now().UTC()
	if err := s.client.SetJSON(ctx, sessionKey(session.ID), session, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id))
}
