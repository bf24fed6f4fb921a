package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chatbot-router/internal/domain"
)

func newTestAdminService(t *testing.T, limiter LoginRateLimiter) (*AdminService, *mockJobApplicationRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &mockJobApplicationRepo{list: []domain.JobApplication{{ID: "a1"}}}
	jwtSvc := NewJWTService("secret", time.Minute, time.Hour)
	apps := NewJobApplicationService(repo, nil, nil)
	return NewAdminService("Ops@Example.com", string(hash), jwtSvc, limiter, apps, nil), repo
}

func TestAdminService_Login(t *testing.T) {
	svc, _ := newTestAdminService(t, nil)

	pair, err := svc.Login(context.Background(), " ops@example.com ", "s3cret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	if _, err := svc.Login(context.Background(), "ops@example.com", "wrong", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "other@example.com", "s3cret", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAdminService_RateLimited(t *testing.T) {
	svc, _ := newTestAdminService(t, NewMemoryLoginRateLimiter(time.Minute, 1))

	if _, err := svc.Login(context.Background(), "ops@example.com", "wrong", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ops@example.com", "s3cret", "10.0.0.1"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func TestAdminService_NotConfigured(t *testing.T) {
	svc := NewAdminService("", "", nil, nil, nil, nil)
	if _, err := svc.Login(context.Background(), "a", "b", "ip"); !errors.Is(err, ErrAdminNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestAdminService_RefreshAndApplications(t *testing.T) {
	svc, repo := newTestAdminService(t, nil)
	pair, err := svc.Login(context.Background(), "ops@example.com", "s3cret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Refresh(pair.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	apps, err := svc.Applications(context.Background(), 0)
	if err != nil || len(apps) != 1 || repo.lastLimit != 20 {
		t.Fatalf("unexpected list: %v %v limit=%d", apps, err, repo.lastLimit)
	}
}
