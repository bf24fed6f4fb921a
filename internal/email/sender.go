package email

import (
	"context"
	"errors"

	"chatbot-router/internal/domain"
)

// Sender notifica por correo las postulaciones nuevas.
type Sender interface {
	SendJobApplication(ctx context.Context, app domain.JobApplication) error
}

var ErrSenderDisabled = errors.New("email sender disabled")

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendJobApplication(_ context.Context, _ domain.JobApplication) error {
	if s.reason == "" {
		return ErrSenderDisabled
	}
	return errors.Join(ErrSenderDisabled, errors.New(s.reason))
}
