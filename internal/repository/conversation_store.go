package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"chatbot-router/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrProfileNotFound = errors.New("profile not found")
)

const redisOpTimeout = 500 * time.Millisecond

// SessionStore guarda el token de sesion NLU por usuario. Las sesiones no expiran.
type SessionStore interface {
	// CreateIfAbsent guarda la sesion solo si el usuario no tiene una y devuelve true si la creo.
	CreateIfAbsent(ctx context.Context, session domain.Session) (bool, error)
	Get(ctx context.Context, userID string) (domain.Session, error)
}

// ProfileStore cachea perfiles de usuario por id.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (domain.UserProfile, error)
	Save(ctx context.Context, profile domain.UserProfile) error
}

type memorySessionStore struct {
	mu    sync.RWMutex
	items map[string]domain.Session
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{items: make(map[string]domain.Session)}
}

func (s *memorySessionStore) CreateIfAbsent(_ context.Context, session domain.Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[session.UserID]; ok {
		return false, nil
	}
	s.items[session.UserID] = session
	return true, nil
}

func (s *memorySessionStore) Get(_ context.Context, userID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[userID]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

type memoryProfileStore struct {
	mu    sync.RWMutex
	items map[string]domain.UserProfile
}

func NewMemoryProfileStore() ProfileStore {
	return &memoryProfileStore{items: make(map[string]domain.UserProfile)}
}

func (s *memoryProfileStore) Get(_ context.Context, userID string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[userID]
	if !ok {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *memoryProfileStore) Save(_ context.Context, profile domain.UserProfile) error {
	if strings.TrimSpace(profile.UserID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[profile.UserID] = profile
	return nil
}

type redisKV interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisSessionStore struct {
	client redisKV
	prefix string
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "bot:session:",
	}
}

func (s *redisSessionStore) CreateIfAbsent(ctx context.Context, session domain.Session) (bool, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.SetNX(ctx, s.prefix+session.UserID, payload, 0).Result()
}

func (s *redisSessionStore) Get(ctx context.Context, userID string) (domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

type redisProfileStore struct {
	client redisKV
	prefix string
}

func NewRedisProfileStore(client *redis.Client) ProfileStore {
	if client == nil {
		return nil
	}
	return &redisProfileStore{
		client: client,
		prefix: "bot:profile:",
	}
}

func (s *redisProfileStore) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return domain.UserProfile{}, err
	}
	var p domain.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.UserProfile{}, err
	}
	return p, nil
}

func (s *redisProfileStore) Save(ctx context.Context, profile domain.UserProfile) error {
	if strings.TrimSpace(profile.UserID) == "" {
		return nil
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+profile.UserID, payload, 0).Err()
}
