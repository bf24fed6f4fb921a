package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/email"
	"chatbot-router/internal/repository"
)

var ErrJobApplicationServiceNotConfigured = errors.New("job application service not configured")

const (
	defaultApplicationsLimit = 20
	maxApplicationsLimit     = 100
)

// JobApplicationService persiste postulaciones y avisa por correo.
type JobApplicationService struct {
	repo     repository.JobApplicationRepository
	notifier email.Sender
	logger   *zap.Logger
}

func NewJobApplicationService(repo repository.JobApplicationRepository, notifier email.Sender, logger *zap.Logger) *JobApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobApplicationService{repo: repo, notifier: notifier, logger: logger}
}

func (s *JobApplicationService) Create(ctx context.Context, phone, name, previousJob, years, vacancy string) (domain.JobApplication, error) {
	if s == nil || s.repo == nil {
		return domain.JobApplication{}, ErrJobApplicationServiceNotConfigured
	}

	app := domain.JobApplication{
		ID:                uuid.NewString(),
		PhoneNumber:       strings.TrimSpace(phone),
		UserName:          strings.TrimSpace(name),
		PreviousJob:       strings.TrimSpace(previousJob),
		YearsOfExperience: strings.TrimSpace(years),
		JobVacancy:        strings.TrimSpace(vacancy),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return domain.JobApplication{}, fmt.Errorf("create job application: %w", err)
	}
	s.logger.Info("job application created", zap.String("id", app.ID), zap.String("vacancy", app.JobVacancy))

	if s.notifier != nil {
		if err := s.notifier.SendJobApplication(ctx, app); err != nil {
			s.logger.Warn("job application email failed", zap.Error(err), zap.String("id", app.ID))
		}
	}
	return app, nil
}

func (s *JobApplicationService) ListRecent(ctx context.Context, limit int) ([]domain.JobApplication, error) {
	if s == nil || s.repo == nil {
		return nil, ErrJobApplicationServiceNotConfigured
	}
	if limit <= 0 {
		limit = defaultApplicationsLimit
	}
	if limit > maxApplicationsLimit {
		limit = maxApplicationsLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
