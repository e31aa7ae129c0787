package registration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an unanswered registration prompt stays open.
const DefaultSessionTTL = 10 * time.Minute

// SessionStore tracks users who were asked for a wallet address.
// Sessions are keyed by (chat, user) and expire on their own.
type SessionStore interface {
	// Open starts or restarts the session of a user.
	Open(ctx context.Context, chatID, userID int64) error

	// Exists reports whether the user has an open session.
	Exists(ctx context.Context, chatID, userID int64) (bool, error)

	// Close ends the session and reports whether one was open.
	Close(ctx context.Context, chatID, userID int64) (bool, error)
}

type sessionKey struct {
	chatID int64
	userID int64
}

// MemorySessionStore is an in-process SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	deadline map[sessionKey]time.Time
	now      func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates a new MemorySessionStore.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		ttl:      ttl,
		deadline: make(map[sessionKey]time.Time),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Open(_ context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.deadline[sessionKey{chatID, userID}] = s.now().Add(s.ttl)
	return nil
}

func (s *MemorySessionStore) Exists(_ context.Context, chatID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(sessionKey{chatID, userID}), nil
}

func (s *MemorySessionStore) Close(_ context.Context, chatID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{chatID, userID}
	open := s.live(key)
	delete(s.deadline, key)
	return open, nil
}

// live must be called with mu held.
func (s *MemorySessionStore) live(key sessionKey) bool {
	deadline, ok := s.deadline[key]
	if !ok {
		return false
	}
	if !s.now().Before(deadline) {
		delete(s.deadline, key)
		return false
	}
	return true
}

// sweep drops expired sessions. Must be called with mu held.
func (s *MemorySessionStore) sweep() {
	now := s.now()
	for key, deadline := range s.deadline {
		if !now.Before(deadline) {
			delete(s.deadline, key)
		}
	}
}

// RedisSessionStore keeps sessions in Redis so they survive restarts and are
// shared between bot replicas.
type RedisSessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a new RedisSessionStore.
func NewRedisSessionStore(client redis.UniversalClient, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		prefix: "sniperbowl:register:",
	}
}

func (s *RedisSessionStore) key(chatID, userID int64) string {
	return fmt.Sprintf("%s%d:%d", s.prefix, chatID, userID)
}

func (s *RedisSessionStore) Open(ctx context.Context, chatID, userID int64) error {
	if err := s.client.Set(ctx, s.key(chatID, userID), 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Exists(ctx context.Context, chatID, userID int64) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(chatID, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Close(ctx context.Context, chatID, userID int64) (bool, error) {
	n, err := s.client.Del(ctx, s.key(chatID, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("close session: %w", err)
	}
	return n > 0, nil
}
