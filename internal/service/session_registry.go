package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/messenger"
	"chatbot-router/internal/repository"
)

const profileFetchTimeout = 10 * time.Second

// SessionRegistry mantiene la sesion NLU y el perfil cacheado de cada usuario.
type SessionRegistry struct {
	sessions repository.SessionStore
	profiles repository.ProfileStore
	fetcher  messenger.ProfileFetcher
	users    repository.UserRepository
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewSessionRegistry crea el registro. users es opcional.
func NewSessionRegistry(
	sessions repository.SessionStore,
	profiles repository.ProfileStore,
	fetcher messenger.ProfileFetcher,
	users repository.UserRepository,
	logger *zap.Logger,
) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		sessions: sessions,
		profiles: profiles,
		fetcher:  fetcher,
		users:    users,
		logger:   logger,
	}
}

// Ensure crea la sesion del usuario si no existe y lanza la busqueda del perfil
// en background si todavia no esta cacheado. Es idempotente.
//
// Dos primeros eventos casi simultaneos del mismo usuario pueden lanzar dos
// busquedas de perfil; la ultima en terminar queda guardada.
func (r *SessionRegistry) Ensure(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	created, err := r.sessions.CreateIfAbsent(ctx, domain.Session{
		UserID:    userID,
		Token:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.Warn("create session failed", zap.Error(err), zap.String("user_id", userID))
	} else if created {
		r.logger.Info("session created", zap.String("user_id", userID))
	}

	_, err = r.profiles.Get(ctx, userID)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		r.logger.Warn("profile lookup failed", zap.Error(err), zap.String("user_id", userID))
	}
	if r.fetcher == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.fetchProfile(userID)
	}()
}

func (r *SessionRegistry) fetchProfile(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
	defer cancel()

	profile, err := r.fetcher.FetchProfile(ctx, userID)
	if err != nil {
		r.logger.Warn("fetch profile failed", zap.Error(err), zap.String("user_id", userID))
		return
	}
	if err := r.profiles.Save(ctx, profile); err != nil {
		r.logger.Warn("cache profile failed", zap.Error(err), zap.String("user_id", userID))
	}
	if r.users != nil {
		if err := r.users.Upsert(ctx, profile); err != nil {
			r.logger.Warn("persist profile failed", zap.Error(err), zap.String("user_id", userID))
		}
	}
}

// SessionToken devuelve el token NLU del usuario, creandolo si hiciera falta.
func (r *SessionRegistry) SessionToken(ctx context.Context, userID string) (string, error) {
	session, err := r.sessions.Get(ctx, userID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		if _, err := r.sessions.CreateIfAbsent(ctx, domain.Session{
			UserID:    userID,
			Token:     uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return "", err
		}
		session, err = r.sessions.Get(ctx, userID)
	}
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// Profile devuelve el perfil cacheado si ya llego.
func (r *SessionRegistry) Profile(ctx context.Context, userID string) (domain.UserProfile, bool) {
	p, err := r.profiles.Get(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, false
	}
	return p, true
}

// Wait bloquea hasta que terminen las busquedas de perfil en curso.
func (r *SessionRegistry) Wait() {
	r.wg.Wait()
}
