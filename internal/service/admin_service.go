package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chatbot-router/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRateLimited   = errors.New("too many login attempts")
	ErrAdminNotConfigured = errors.New("admin access not configured")
)

// AdminService autentica al operador del panel y lista postulaciones.
type AdminService struct {
	email        string
	passwordHash []byte
	jwt          *JWTService
	limiter      LoginRateLimiter
	applications *JobApplicationService
	logger       *zap.Logger
}

func NewAdminService(
	email, passwordHash string,
	jwtSvc *JWTService,
	limiter LoginRateLimiter,
	applications *JobApplicationService,
	logger *zap.Logger,
) *AdminService {
	if limiter == nil {
		limiter = NewMemoryLoginRateLimiter(0, 5)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
		jwt:          jwtSvc,
		limiter:      limiter,
		applications: applications,
		logger:       logger,
	}
}

// Login valida email y password contra el hash bcrypt configurado.
func (s *AdminService) Login(ctx context.Context, email, password, clientIP string) (TokenPair, error) {
	if s.email == "" || len(s.passwordHash) == 0 || s.jwt == nil {
		return TokenPair{}, ErrAdminNotConfigured
	}
	if !s.limiter.Allow(clientIP) {
		s.logger.Warn("admin login rate limited", zap.String("client_ip", clientIP))
		return TokenPair{}, ErrLoginRateLimited
	}

	if strings.ToLower(strings.TrimSpace(email)) != s.email {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.jwt.GeneratePair(domain.Admin{Email: s.email})
	if err != nil {
		return TokenPair{}, err
	}
	s.logger.Info("admin logged in", zap.String("client_ip", clientIP))
	return pair, nil
}

func (s *AdminService) Refresh(refreshToken string) (TokenPair, error) {
	if s.jwt == nil {
		return TokenPair{}, ErrAdminNotConfigured
	}
	return s.jwt.RefreshPair(refreshToken)
}

func (s *AdminService) Logout(refreshToken string) error {
	if s.jwt == nil {
		return ErrAdminNotConfigured
	}
	return s.jwt.RevokeRefresh(refreshToken)
}

func (s *AdminService) Applications(ctx context.Context, limit int) ([]domain.JobApplication, error) {
	return s.applications.ListRecent(ctx, limit)
}
