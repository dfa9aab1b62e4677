// Package session maps opaque bearer tokens to user identifiers.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("session not found")

// Store issues, resolves and revokes sessions.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

// NewToken returns 256 random bits, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Redis keeps sessions under session:<token> with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func redisKey(token string) string {
	return "session:" + token
}

func (r *Redis) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	if err := r.client.SetEx(ctx, redisKey(token), userID.String(), r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (r *Redis) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrNotFound
	}
	raw, err := r.client.Get(ctx, redisKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func (r *Redis) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, redisKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type entry struct {
	userID  uuid.UUID
	expires time.Time
}

// sweepInterval bounds how often Create scans for expired sessions.
const sweepInterval = time.Minute

// Memory keeps sessions in process. Sessions are lost on restart.
type Memory struct {
	mu        sync.Mutex
	sessions  map[string]entry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{sessions: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *Memory) Create(_ context.Context, userID uuid.UUID) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
	}
	m.sessions[token] = entry{userID: userID, expires: now.Add(m.ttl)}
	return token, nil
}

// sweep drops expired sessions. m.mu must be held.
func (m *Memory) sweep(now time.Time) {
	for token, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, token)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}

func (m *Memory) Lookup(_ context.Context, token string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[token]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, token)
		return uuid.Nil, ErrNotFound
	}
	return e.userID, nil
}

func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

var (
	_ Store = (*Redis)(nil)
	_ Store = (*Memory)(nil)
)
