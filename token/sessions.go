package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh_token:"

// ErrSessionNotFound means the refresh token was never issued, has expired
// or was already used.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore remembers which refresh tokens are live. Tokens are single
// use: Take removes the entry it returns.
type SessionStore interface {
	Save(ctx context.Context, refreshToken, userID string, ttl time.Duration) error
	Take(ctx context.Context, refreshToken string) (string, error)
	Delete(ctx context.Context, refreshToken string) error
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func (s *redisSessionStore) Save(ctx context.Context, refreshToken, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshKeyPrefix+refreshToken, userID, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Take(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, refreshKeyPrefix+refreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return userID, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, refreshToken string) error {
	if err := s.rdb.Del(ctx, refreshKeyPrefix+refreshToken).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

type memorySession struct {
	userID  string
	expires time.Time
}

// MemorySessionStore keeps sessions in process. It is used when redis is not
// configured, which only happens on a single-instance demo.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Save(_ context.Context, refreshToken, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[refreshToken] = memorySession{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Take(_ context.Context, refreshToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[refreshToken]
	delete(s.sessions, refreshToken)
	if !ok || time.Now().After(sess.expires) {
		return "", ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, refreshToken)
	return nil
}
